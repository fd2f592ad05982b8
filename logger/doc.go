// Package logger is the host-facing logging API of tenantlog.
//
// A Logger is immutable after construction. The level, default fields and
// sink are set once via the Builder and never modified, so a Logger is safe
// for concurrent use without locking.
//
// Every logging method takes a context.Context first. The ctx is handed to
// the Logger's Sink, and with the default sink (delegate.Default) it is what
// selects the tenant whose handler receives the entry:
//
//	ctx := tenant.Enter(ctx, tc)
//	logger.Info(ctx, "ready", logger.Int("port", 8080))
//
// A ctx with no tenant bound, or a tenant with no handler, drops the entry
// without any error.
//
// The default Logger is created in init() around delegate.Default() at
// InfoLevel. There is intentionally no SetDefault.
//
// For a fixed destination use the Builder:
//
//	log := logger.NewBuilder().
//	    WithHandler(myHandler).
//	    WithLevel(logger.DebugLevel).
//	    WithCaller(true).
//	    Build()
//
// Level checks happen before any allocation, so filtered-out messages cost
// only a single integer comparison.
package logger
