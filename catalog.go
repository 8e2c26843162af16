package toolreg

import (
	"errors"
	"iter"
	"log/slog"
	"slices"
	"sync"
)

// Catalog holds tool descriptors keyed by unique name, in registration order.
//
// Registration is expected to happen during startup, before the catalog is handed to a
// Dispatcher; Freeze marks the end of that phase. The catalog is guarded by an RWMutex,
// so concurrent registration and lookups are also safe.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	order  []*Descriptor
	frozen bool
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byName: make(map[string]*Descriptor)}
}

// Register adds a fully built descriptor. It fails with a *DuplicateNameError if the name
// is taken and with ErrFrozen after Freeze; in both cases the catalog is unchanged.
func (c *Catalog) Register(d *Descriptor) error {
	if d == nil {
		return &SchemaError{Reason: "descriptor must not be nil"}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return ErrFrozen
	}
	if _, ok := c.byName[d.name]; ok {
		return &DuplicateNameError{Name: d.name}
	}
	c.byName[d.name] = d
	c.order = append(c.order, d)
	return nil
}

// Lookup returns the descriptor registered under name, or a *NotFoundError.
func (c *Catalog) Lookup(name string) (*Descriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return d, nil
}

// List returns the descriptors whose tag set intersects tags, in registration order.
// No tags means all descriptors. The sequence is lazy and restartable: each range over it
// takes a fresh snapshot of the catalog.
func (c *Catalog) List(tags ...string) iter.Seq[*Descriptor] {
	return func(yield func(*Descriptor) bool) {
		for _, d := range c.snapshot() {
			if len(tags) > 0 && !slices.ContainsFunc(tags, d.HasTag) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Names returns the registered tool names in registration order.
func (c *Catalog) Names() []string {
	snap := c.snapshot()
	out := make([]string, len(snap))
	for i, d := range snap {
		out[i] = d.name
	}
	return out
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Freeze ends the registration phase. Later Register calls fail with ErrFrozen.
func (c *Catalog) Freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// Frozen reports whether Freeze was called.
func (c *Catalog) Frozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

func (c *Catalog) snapshot() []*Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.order)
}

// Registrar runs the startup registration phase against a catalog. A failing tool is
// logged and remembered but does not stop the others from registering.
//
//	r := toolreg.NewRegistrar(catalog, logger)
//	r.Add(toolreg.NewFuncTool(GetDocument, toolreg.WithTags("documents")))
//	r.Add(toolreg.NewTool("calculator", params, calculate))
//	if err := r.Err(); err != nil { ... }
type Registrar struct {
	catalog *Catalog
	logger  *slog.Logger
	errs    []error
}

// NewRegistrar returns a Registrar that registers into c. A nil logger uses slog.Default().
func NewRegistrar(c *Catalog, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{catalog: c, logger: logger}
}

// Add registers the result of a NewTool or NewFuncTool call. Build errors and registration
// errors are logged at error level and collected; documentation warnings are logged at warn level.
func (r *Registrar) Add(d *Descriptor, err error) {
	if err != nil {
		r.logger.Error("tool build failed", "kind", KindOf(err), "error", err)
		r.errs = append(r.errs, err)
		return
	}
	if err := r.catalog.Register(d); err != nil {
		var name string
		if d != nil {
			name = d.name
		}
		r.logger.Error("tool registration failed", "tool", name, "kind", KindOf(err), "error", err)
		r.errs = append(r.errs, err)
		return
	}
	for _, w := range d.warnings {
		r.logger.Warn("tool documentation mismatch", "tool", d.name, "warning", w)
	}
	r.logger.Info("tool registered", "tool", d.name, "tags", d.tags, "params", len(d.schema.Params))
}

// Err returns every error seen so far joined with errors.Join, or nil.
func (r *Registrar) Err() error {
	return errors.Join(r.errs...)
}

// Done ends the registration phase: it freezes the catalog and returns Err.
func (r *Registrar) Done() error {
	r.catalog.Freeze()
	return r.Err()
}
