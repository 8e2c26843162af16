package toolreg

import (
	"context"
	"reflect"
	"regexp"
	"slices"
)

var toolNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// NewTool builds a Descriptor from an explicit parameter list and a handler. This is the
// statically described path: nothing is inferred, the parameters are the schema.
// Descriptions given with WithDoc take precedence over ParameterSpec descriptions.
// Returns a *SchemaError if the parameters or the output type are malformed.
func NewTool(name string, params []ParameterSpec, handler Handler, opts ...ToolOption) (*Descriptor, error) {
	o := applyToolOptions(opts)
	if o.name != "" {
		name = o.name
	}
	if handler == nil {
		return nil, &SchemaError{Tool: name, Reason: "handler must not be nil"}
	}
	output := AnyType
	if o.output != nil {
		output = *o.output
	}
	return newDescriptor(name, params, output, handler, o)
}

// NewFuncTool builds a Descriptor from a typed function. The argument struct T is introspected
// into parameters (json, description, default and enum tags), R into the output type, and the
// tool name is derived from the function symbol unless WithName is given.
// At invocation the validated arguments are decoded into T by name; if T implements
// Validatable, Validate runs before fn.
func NewFuncTool[T any, R any](fn func(ctx context.Context, args T) (R, error), opts ...ToolOption) (*Descriptor, error) {
	o := applyToolOptions(opts)
	if fn == nil {
		return nil, &SchemaError{Tool: o.name, Reason: "handler must not be nil"}
	}
	name := o.name
	if name == "" {
		derived, err := deriveName(fn)
		if err != nil {
			return nil, err
		}
		name = derived
	}
	params, err := introspectArgs(reflect.TypeFor[T]())
	if err != nil {
		return nil, withTool(err, name)
	}
	output := AnyType
	if o.output != nil {
		output = *o.output
	} else if output, err = introspectResult(reflect.TypeFor[R]()); err != nil {
		return nil, withTool(err, name)
	}
	handler := func(ctx context.Context, args Args) (any, error) {
		var in T
		if err := args.Decode(&in); err != nil {
			return nil, bindError(name, err)
		}
		if err := validateCustom(name, in); err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}
	return newDescriptor(name, params, output, handler, o)
}

func newDescriptor(name string, params []ParameterSpec, output Type, handler Handler, o toolOptions) (*Descriptor, error) {
	if !toolNameRe.MatchString(name) {
		return nil, &SchemaError{Tool: name, Reason: "tool name must be 1-64 characters of letters, digits, '_', '-' or '.'"}
	}
	doc := ParseDoc(o.doc)
	schema, validators, warnings, err := buildSchema(name, params, output, doc)
	if err != nil {
		return nil, err
	}
	description := doc.Summary
	if o.description != "" {
		description = o.description
	}
	return &Descriptor{
		name:        name,
		description: description,
		tags:        dedupe(o.tags),
		schema:      schema,
		handler:     handler,
		validators:  validators,
		warnings:    warnings,
	}, nil
}

func applyToolOptions(opts []ToolOption) toolOptions {
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func withTool(err error, name string) error {
	if se, ok := err.(*SchemaError); ok && se.Tool == "" {
		se.Tool = name
	}
	return err
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
