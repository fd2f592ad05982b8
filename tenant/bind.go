package tenant

import "context"

type contextKey struct{}

// Enter returns a copy of ctx bound to c. Binding an already bound ctx
// shadows the outer binding for the derived context only.
func Enter(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// Current returns the execution context bound to ctx. It reports false when
// ctx is nil, carries no binding, or its context has been closed.
func Current(ctx context.Context) (*Context, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || c == nil || c.Closed() {
		return nil, false
	}
	return c, true
}

// Do runs fn inside c.
func Do(ctx context.Context, c *Context, fn func(ctx context.Context)) {
	fn(Enter(ctx, c))
}
