package toolreg

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dispatcher resolves invocation requests against a catalog, validates and binds the
// arguments, runs the handler through the middleware chain and normalizes every outcome
// into an InvocationResult. Handlers run on the calling goroutine.
type Dispatcher struct {
	catalog *Catalog
	opts    dispatcherOptions
	sem     chan struct{}
	done    chan struct{}
	running sync.WaitGroup

	mu          sync.RWMutex
	middlewares []Middleware
	invoke      Invoker
}

// NewDispatcher creates a Dispatcher over c with the given options.
// By default at most 10 handlers run concurrently; see WithMaxConcurrency.
func NewDispatcher(c *Catalog, opts ...DispatcherOption) *Dispatcher {
	o := dispatcherOptions{
		logger:         slog.Default(),
		maxConcurrency: 10,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	var sem chan struct{}
	if o.maxConcurrency > 0 {
		sem = make(chan struct{}, o.maxConcurrency)
	}
	return &Dispatcher{
		catalog: c,
		opts:    o,
		sem:     sem,
		done:    make(chan struct{}),
		invoke:  callHandler,
	}
}

// Catalog returns the catalog the dispatcher resolves against.
func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// Use sets the middleware chain (onion order: the first middleware is outermost).
// Calling Use again replaces the chain instead of stacking on top of it.
func (d *Dispatcher) Use(middlewares ...Middleware) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.middlewares = append([]Middleware(nil), middlewares...)
	d.invoke = chain(callHandler, d.middlewares)
}

// Invoke runs one request. It never returns an error directly: unknown tools, invalid
// arguments, handler failures and panics all end up in InvocationResult.Err.
// The after-invoke hook (WithOnAfterInvoke) sees every result.
func (d *Dispatcher) Invoke(ctx context.Context, req InvocationRequest) InvocationResult {
	return d.dispatch(ctx, req, nil)
}

// dispatch runs req unless decodeErr reports that its arguments could not be decoded; either
// way the hooks see the request and its result.
func (d *Dispatcher) dispatch(ctx context.Context, req InvocationRequest, decodeErr error) (res InvocationResult) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	res = InvocationResult{ID: req.ID, Tool: req.Tool}
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if d.opts.onAfter != nil {
			d.opts.onAfter(ctx, req, res, res.Duration)
		}
	}()
	if d.opts.onBefore != nil {
		d.opts.onBefore(ctx, req)
	}

	if decodeErr != nil {
		res.Err = NewFailure(decodeErr)
		return res
	}
	value, err := d.run(ctx, req)
	if err != nil {
		res.Err = NewFailure(err)
		return res
	}
	res.Value = value
	return res
}

func (d *Dispatcher) run(ctx context.Context, req InvocationRequest) (any, error) {
	desc, err := d.catalog.Lookup(req.Tool)
	if err != nil {
		return nil, err
	}
	args, err := desc.validateArgs(req.Args)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	select {
	case <-d.done:
		d.mu.RUnlock()
		return nil, &HandlerError{Tool: desc.name, Err: ErrShutdown}
	default:
	}
	d.running.Add(1)
	invoke := d.invoke
	d.mu.RUnlock()
	defer d.running.Done()

	if err := d.acquireSemaphore(ctx); err != nil {
		return nil, &HandlerError{Tool: desc.name, Err: err}
	}
	defer d.releaseSemaphore()

	value, err := d.safeInvoke(ctx, invoke, desc, args)
	if err != nil {
		return nil, d.normalize(ctx, desc, err)
	}
	return value, nil
}

func (d *Dispatcher) safeInvoke(ctx context.Context, invoke Invoker, desc *Descriptor, args Args) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			d.opts.logger.ErrorContext(ctx, "tool panic recovered", "tool", desc.name, "panic", p)
			value = nil
			err = &HandlerError{Tool: desc.name, Err: &panicError{p: p}}
		}
	}()
	return invoke(ctx, desc, args)
}

// normalize keeps ValidationError and HandlerError as they are and wraps anything else
// in a HandlerError.
func (d *Dispatcher) normalize(ctx context.Context, desc *Descriptor, err error) error {
	var he *HandlerError
	if errors.As(err, &he) {
		return err
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		if ve.Tool == "" {
			ve.Tool = desc.name
		}
		return ve
	}
	d.opts.logger.DebugContext(ctx, "tool handler failed", "tool", desc.name, "error", err)
	return &HandlerError{Tool: desc.name, Err: err}
}

func callHandler(ctx context.Context, d *Descriptor, args Args) (any, error) {
	return d.handler(ctx, args)
}

// InvokeJSON decodes raw as the arguments object and invokes name. An empty payload is
// an empty object; anything but a JSON object is a ValidationError.
func (d *Dispatcher) InvokeJSON(ctx context.Context, name string, raw []byte) InvocationResult {
	return d.InvokeRaw(ctx, InvocationRequest{Tool: name}, raw)
}

// InvokeRaw is InvokeJSON for a prepared request: raw replaces req.Args and req.ID is kept.
// A payload that fails to decode is reported like any other invalid argument, hooks included.
func (d *Dispatcher) InvokeRaw(ctx context.Context, req InvocationRequest, raw []byte) InvocationResult {
	args, err := DecodeArgs(raw)
	if err != nil {
		req.Args = nil
		return d.dispatch(ctx, req, &ValidationError{
			Tool:       req.Tool,
			Violations: []Violation{{Reason: err.Error()}},
		})
	}
	req.Args = args
	return d.dispatch(ctx, req, nil)
}

// DecodeArgs parses a JSON arguments object. Empty input yields an empty map.
func DecodeArgs(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := decodeJSON(raw, &args); err != nil {
		return nil, errors.New("arguments must be a JSON object: " + err.Error())
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// Go runs Invoke on a new goroutine and delivers the result on the returned channel,
// which receives exactly one value and is then closed.
func (d *Dispatcher) Go(ctx context.Context, req InvocationRequest) <-chan InvocationResult {
	ch := make(chan InvocationResult, 1)
	go func() {
		defer close(ch)
		ch <- d.Invoke(ctx, req)
	}()
	return ch
}

// InvokeBatch runs all requests in parallel and returns their results in request order.
// Partial success: one failure does not cancel the others.
func (d *Dispatcher) InvokeBatch(ctx context.Context, reqs []InvocationRequest) []InvocationResult {
	results := make([]InvocationResult, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Go(func() {
			results[i] = d.Invoke(ctx, req)
		})
	}
	wg.Wait()
	return results
}

// Shutdown rejects new invocations and waits for in-flight handlers or ctx to cancel.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	select {
	case <-d.done:
		d.mu.Unlock()
		return nil
	default:
		close(d.done)
	}
	d.mu.Unlock()
	done := make(chan struct{})
	go func() {
		d.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) acquireSemaphore(ctx context.Context) error {
	if d.sem == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	select {
	case d.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) releaseSemaphore() {
	if d.sem != nil {
		<-d.sem
	}
}
