package delegate

import (
	"context"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/handler"
)

// ExecutionContext is the read-only view of a tenant the sink needs.
type ExecutionContext interface {
	// LogHandler returns the handler configured for the context, or nil.
	LogHandler() handler.Handler
}

// Resolver reports the execution context bound to ctx. It must be safe for
// concurrent use and must accept contexts with no binding at all.
type Resolver interface {
	Current(ctx context.Context) (ExecutionContext, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (ExecutionContext, bool)

// Current calls f(ctx).
func (f ResolverFunc) Current(ctx context.Context) (ExecutionContext, bool) {
	return f(ctx)
}

// Sink forwards publish, flush and close to the handler of the execution
// context active for the caller. When there is no active context, or the
// context has no handler, every operation is a silent no-op returning nil.
//
// A Sink is immutable and safe for concurrent use.
type Sink struct {
	resolver Resolver
}

// New returns a sink resolving through r.
func New(r Resolver) *Sink {
	if r == nil {
		panic("delegate: nil Resolver")
	}
	return &Sink{resolver: r}
}

// Handler resolves the handler that would receive a record published with
// ctx right now.
func (s *Sink) Handler(ctx context.Context) (handler.Handler, bool) {
	ec, ok := s.resolver.Current(ctx)
	if !ok || ec == nil {
		return nil, false
	}
	h := ec.LogHandler()
	return h, h != nil
}

// Publish hands entry, unmodified, to the active context's handler exactly
// once and returns the handler's error as is.
func (s *Sink) Publish(ctx context.Context, entry *core.Entry) error {
	h, ok := s.Handler(ctx)
	if !ok {
		return nil
	}
	return h.Handle(entry)
}

// Flush flushes the active context's handler.
func (s *Sink) Flush(ctx context.Context) error {
	h, ok := s.Handler(ctx)
	if !ok {
		return nil
	}
	return h.Flush()
}

// Close closes the active context's handler. The sink itself stays usable.
func (s *Sink) Close(ctx context.Context) error {
	h, ok := s.Handler(ctx)
	if !ok {
		return nil
	}
	return h.Close()
}

// Bind returns a handler.Handler that routes through s using ctx for every
// call. It lets hosts that cannot pass a context per record hold a plain
// handler; resolution still happens on each call.
func (s *Sink) Bind(ctx context.Context) handler.Handler {
	return bound{sink: s, ctx: ctx}
}

type bound struct {
	sink *Sink
	ctx  context.Context
}

func (b bound) Handle(entry *core.Entry) error { return b.sink.Publish(b.ctx, entry) }
func (b bound) Flush() error                   { return b.sink.Flush(b.ctx) }
func (b bound) Close() error                   { return b.sink.Close(b.ctx) }
