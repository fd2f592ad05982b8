// Package handler provides the Handler interface and the destinations an
// execution context can log to.
//
// A Handler publishes, flushes and closes. The destinations here are
// synchronous; wrap one in an AsyncHandler to move the write off the
// caller's goroutine. When the async queue is full, a per-level
// OverflowPolicy decides: DropNewest (default for Debug/Info/Warn),
// DropOldest, or Block with a timeout (default for Error and above).
//
// Built-in handlers:
//
//   - StreamHandler writes formatted entries to any io.Writer (default:
//     stderr), optionally flushing after every entry and closing the
//     writer on Close.
//   - FileHandler writes to a buffered file with rotation by size or
//     interval and cleanup of old backups.
//   - AsyncHandler queues entries for another handler.
//   - MultiHandler fans out a single entry to several handlers.
//   - LevelFilter drops entries below a minimum level.
//   - MemoryHandler keeps entries in memory.
//
// AsHandler turns a configured sink, either a Handler or an io.Writer, into
// a Handler, and SameSink tells whether two handlers end up at the same
// destination.
//
// Handlers that keep an entry after Handle returns clone it first, since
// callers recycle entries.
package handler
