package delegate

import (
	"context"

	"github.com/philipp01105/tenantlog/tenant"
)

// tenantResolver resolves through the bindings made with tenant.Enter.
var tenantResolver = ResolverFunc(func(ctx context.Context) (ExecutionContext, bool) {
	c, ok := tenant.Current(ctx)
	if !ok {
		return nil, false
	}
	return c, true
})

// defaultSink is the single process-wide sink, built once at package
// initialization.
var defaultSink = New(tenantResolver)

// Default returns the process-wide sink. It resolves the current execution
// context with tenant.Current.
func Default() *Sink {
	return defaultSink
}
