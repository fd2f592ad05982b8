// Package delegate implements the process-wide log sink that routes every
// record to the handler of the tenant active for the caller.
//
// The host logging layer (package logger, or one of the bridges for slog,
// zap, logrus and zerolog) only ever sees one sink. For each Publish, Flush
// or Close call the sink asks its Resolver which execution context the
// caller's context.Context is bound to, reads that context's handler, and
// invokes the same operation on it:
//
//	logger.Info(ctx, "ready") -> Sink.Publish(ctx, entry)
//	                         -> Resolver.Current(ctx)
//	                         -> ExecutionContext.LogHandler().Handle(entry)
//
// Records emitted outside any tenant, or inside a tenant that configured no
// handler, are dropped without any diagnostic. This is deliberate: tenants
// that do not want logs get silence, not warnings. If records go missing,
// check that the emitting call chain carries a bound context and that the
// tenant was created with a log destination.
//
// The sink holds nothing but its resolver. It never caches handlers, never
// locks, never copies or modifies entries, and returns handler errors
// exactly as the handler produced them.
package delegate
