// Package tenant manages execution contexts: isolated tenants of an
// embedding runtime, each with its own optional log destination.
//
// An Engine creates contexts and owns their lifecycle. A context's log
// handler is chosen once, when the context is created, in this order:
//
//  1. the handler or io.Writer given in Config.LogHandler;
//  2. the engine-wide handler from EngineConfig.LogHandler;
//  3. a stream handler over Config.ErrWriter, or EngineConfig.ErrWriter,
//     that flushes on every entry and never closes the writer;
//  4. none.
//
// Config.Silent skips all of the above. A context without a handler is
// valid; records routed to it are dropped.
//
// A call chain runs "inside" a context once the context has been attached
// to its context.Context with Enter. Current reports the innermost attached
// context, or nothing once that context has been closed.
package tenant
