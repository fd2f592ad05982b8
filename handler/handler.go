package handler

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/philipp01105/tenantlog/core"
)

// ErrUnsupportedSink is returned by AsHandler for values that are neither a
// Handler nor an io.Writer.
var ErrUnsupportedSink = errors.New("handler: log sink must be a Handler or an io.Writer")

// Handler is the capability set of a log destination: publish, flush and
// close. Every tenant configures at most one Handler; its implementation and
// lifetime belong to whoever configured it.
type Handler interface {
	// Handle publishes a log entry. Implementations must not retain the
	// entry after returning unless they clone it.
	Handle(entry *core.Entry) error

	// Flush forces any buffered output to the underlying destination.
	Flush() error

	// Close closes the handler and releases resources
	Close() error
}

// Enabler is implemented by handlers with a level gate of their own.
// Wrappers forward it to the handler they wrap.
type Enabler interface {
	Enabled(level core.Level) bool
}

// Enabled reports whether h would accept an entry at level. Handlers
// without a gate accept every level.
func Enabled(h Handler, level core.Level) bool {
	if e, ok := h.(Enabler); ok {
		return e.Enabled(level)
	}
	return true
}

// StatsProvider is implemented by handlers that keep delivery counters.
type StatsProvider interface {
	Stats() Snapshot
}

// AsHandler turns a configured log sink into a Handler. A Handler is returned
// as is; an io.Writer is wrapped in a StreamHandler that flushes after every
// entry and does not close the writer. A nil sink, including a typed nil
// such as (*MemoryHandler)(nil), yields a nil Handler.
func AsHandler(sink interface{}) (Handler, error) {
	if isNil(sink) {
		return nil, nil
	}
	switch s := sink.(type) {
	case nil:
		return nil, nil
	case Handler:
		return s, nil
	case io.Writer:
		return NewStreamHandler(StreamConfig{
			Writer:         s,
			CloseStream:    false,
			FlushOnPublish: true,
		}), nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedSink, sink)
	}
}

// SameSink reports whether a and b deliver to the same destination: either
// they are the same handler, or both are stream handlers over the same
// writer.
func SameSink(a, b Handler) bool {
	if a == nil || b == nil {
		return false
	}
	if a == b {
		return true
	}
	sa, ok := a.(*StreamHandler)
	if !ok {
		return false
	}
	sb, ok := b.(*StreamHandler)
	if !ok {
		return false
	}
	return sa.writer == sb.writer
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
