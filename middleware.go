package toolreg

import (
	"context"
	"log/slog"
	"time"
)

// Invoker runs a resolved tool with validated, bound arguments. The innermost Invoker
// calls the descriptor's handler.
type Invoker func(ctx context.Context, d *Descriptor, args Args) (any, error)

// Middleware wraps an Invoker with cross-cutting behavior (logging, recovery, timeout).
type Middleware func(Invoker) Invoker

// WithLogging returns a middleware that logs start, end, duration, and errors.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Invoker) Invoker {
		return func(ctx context.Context, d *Descriptor, args Args) (any, error) {
			logger.InfoContext(ctx, "tool start", "tool", d.Name())
			start := time.Now()
			res, err := next(ctx, d, args)
			dur := time.Since(start)
			if err != nil {
				logger.ErrorContext(ctx, "tool error", "tool", d.Name(), "duration", dur, "kind", KindOf(err), "error", err)
				return nil, err
			}
			logger.InfoContext(ctx, "tool end", "tool", d.Name(), "duration", dur)
			return res, nil
		}
	}
}

// WithRecovery returns a middleware that recovers panics into a HandlerError. The dispatcher
// recovers on its own as well; this is for placing recovery inside other middlewares so they
// observe the failure.
func WithRecovery() Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, d *Descriptor, args Args) (res any, err error) {
			defer func() {
				if p := recover(); p != nil {
					res = nil
					err = &HandlerError{Tool: d.Name(), Err: &panicError{p: p}}
				}
			}()
			return next(ctx, d, args)
		}
	}
}

// WithTimeout returns a middleware that derives a context with the given deadline. Handlers
// are never interrupted: only those that watch ctx.Done() stop early.
func WithTimeout(d time.Duration) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, desc *Descriptor, args Args) (any, error) {
			if d <= 0 {
				return next(ctx, desc, args)
			}
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, desc, args)
		}
	}
}

// chain applies middlewares in onion order: the first one is outermost.
func chain(inner Invoker, middlewares []Middleware) Invoker {
	for i := len(middlewares) - 1; i >= 0; i-- {
		inner = middlewares[i](inner)
	}
	return inner
}
