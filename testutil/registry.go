package testutil

import (
	"log/slog"

	"github.com/skosovsky/toolreg"
)

// NewTestCatalog returns a frozen catalog holding the given mocks. It panics on a build or
// registration error so misconfigured fixtures fail loudly.
func NewTestCatalog(tools ...*MockTool) *toolreg.Catalog {
	c := toolreg.NewCatalog()
	r := toolreg.NewRegistrar(c, slog.New(slog.DiscardHandler))
	for _, m := range tools {
		r.Add(m.Descriptor())
	}
	if err := r.Done(); err != nil {
		panic("testutil: " + err.Error())
	}
	return c
}

// NewTestDispatcher returns a Dispatcher over NewTestCatalog(tools...) with panic-recovering
// middleware and no concurrency limit, suitable for tests.
func NewTestDispatcher(tools ...*MockTool) *toolreg.Dispatcher {
	d := toolreg.NewDispatcher(NewTestCatalog(tools...),
		toolreg.WithMaxConcurrency(0),
		toolreg.WithLogger(slog.New(slog.DiscardHandler)),
	)
	d.Use(toolreg.WithRecovery())
	return d
}
