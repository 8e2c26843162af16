package toolreg

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WithTracing returns a middleware that wraps every handler run in a "tool.invoke" span.
// The span carries the tool name and tags; failures set an error status and the error kind.
func WithTracing(tracer trace.Tracer) Middleware {
	return func(next Invoker) Invoker {
		return func(ctx context.Context, d *Descriptor, args Args) (any, error) {
			ctx, span := tracer.Start(ctx, "tool.invoke",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(
					attribute.String("tool.name", d.Name()),
					attribute.StringSlice("tool.tags", d.Tags()),
					attribute.Int("tool.args", len(args)),
				),
			)
			defer span.End()

			res, err := next(ctx, d, args)
			if err != nil {
				span.SetAttributes(attribute.String("tool.error_kind", string(KindOf(err))))
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			span.SetStatus(codes.Ok, "")
			return res, nil
		}
	}
}
