package trace

import "context"

// binding is what a context carries: the tracer and the innermost open span.
type binding struct {
	tracer Tracer
	span   uint64
}

type bindingKey struct{}

func bindingOf(ctx context.Context) binding {
	if ctx != nil {
		if b, ok := ctx.Value(bindingKey{}).(binding); ok {
			return b
		}
	}
	return binding{tracer: Nop}
}

// FromContext returns the Tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return bindingOf(ctx).tracer
}

// WithTracer stores t in ctx. The current span, if any, is kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	b := bindingOf(ctx)
	b.tracer = t
	return context.WithValue(ctx, bindingKey{}, b)
}

// SpanContext identifies the active span for child spans.
type SpanContext struct {
	SpanID uint64
}

// CurrentSpan returns the active span stored in ctx.
func CurrentSpan(ctx context.Context) SpanContext {
	return SpanContext{SpanID: bindingOf(ctx).span}
}

// WithSpan makes s the parent of spans started from the returned context.
func WithSpan(ctx context.Context, s *Span) context.Context {
	b := bindingOf(ctx)
	b.span = s.ID()
	return context.WithValue(ctx, bindingKey{}, b)
}
