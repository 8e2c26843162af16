// Package testutil provides test helpers for toolreg (e.g. MockTool).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/toolreg"
)

// MockTool is a configurable tool for tests. It records the arguments of every call.
type MockTool struct {
	NameVal   string
	DescVal   string
	Params    []toolreg.ParameterSpec
	Tags      []string
	ExecuteFn toolreg.Handler

	mu    sync.Mutex
	calls []toolreg.Args
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Execute records args and runs ExecuteFn if set, otherwise returns nil.
func (m *MockTool) Execute(ctx context.Context, args toolreg.Args) (any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.mu.Unlock()
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, args)
	}
	return nil, nil
}

// Calls returns the arguments of every call so far.
func (m *MockTool) Calls() []toolreg.Args {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]toolreg.Args(nil), m.calls...)
}

// Descriptor builds the tool.
func (m *MockTool) Descriptor() (*toolreg.Descriptor, error) {
	opts := []toolreg.ToolOption{toolreg.WithTags(m.Tags...)}
	if m.DescVal != "" {
		opts = append(opts, toolreg.WithDescription(m.DescVal))
	}
	return toolreg.NewTool(m.Name(), m.Params, m.Execute, opts...)
}
