package toolreg

import (
	"context"
	"log/slog"
	"time"
)

// toolOptions hold optional tool settings (name and description overrides, tags, etc.).
type toolOptions struct {
	name        string
	description string
	doc         string
	tags        []string
	output      *Type
}

// ToolOption configures a tool (e.g. WithName, WithTags).
type ToolOption func(*toolOptions)

// WithName overrides the tool name. NewFuncTool otherwise derives it from the function symbol.
func WithName(name string) ToolOption {
	return func(o *toolOptions) {
		o.name = name
	}
}

// WithDescription overrides the description extracted from the documentation block.
func WithDescription(desc string) ToolOption {
	return func(o *toolOptions) {
		o.description = desc
	}
}

// WithDoc supplies the structured documentation block (see ParseDoc) for the tool.
func WithDoc(doc string) ToolOption {
	return func(o *toolOptions) {
		o.doc = doc
	}
}

// WithTags sets tool tags (metadata for discovery and filtering). Duplicates are dropped.
func WithTags(tags ...string) ToolOption {
	return func(o *toolOptions) {
		o.tags = append(o.tags, tags...)
	}
}

// WithOutput declares the result type. Tools built with NewTool default to any (unvalidated);
// NewFuncTool introspects it from the return type unless this option is given.
func WithOutput(t Type) ToolOption {
	return func(o *toolOptions) {
		o.output = &t
	}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	logger         *slog.Logger
	maxConcurrency int
	onBefore       func(context.Context, InvocationRequest)
	onAfter        func(context.Context, InvocationRequest, InvocationResult, time.Duration)
}

// WithLogger sets the logger used for recovered panics and handler failures.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.logger = logger
	}
}

// WithMaxConcurrency limits concurrent handler executions (semaphore).
// Pass 0 or negative to disable the semaphore (unlimited concurrency).
func WithMaxConcurrency(n int) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.maxConcurrency = n
	}
}

// WithOnBeforeInvoke sets a hook called before each invocation, after the request ID is assigned.
func WithOnBeforeInvoke(fn func(context.Context, InvocationRequest)) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterInvoke sets a hook called after each invocation with the final result,
// including NotFound and Validation failures and payloads InvokeJSON or InvokeRaw could
// not decode.
func WithOnAfterInvoke(fn func(context.Context, InvocationRequest, InvocationResult, time.Duration)) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.onAfter = fn
	}
}
