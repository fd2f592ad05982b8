// Package slogsink adapts log/slog to a tenantlog sink. Records logged with
// the *Context methods of slog.Logger are routed by the ctx they carry.
package slogsink

import (
	"context"
	"log/slog"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/delegate"
	"github.com/philipp01105/tenantlog/handler"
)

// Publisher is the part of a sink the adapter needs. *delegate.Sink
// implements it.
type Publisher interface {
	Publish(ctx context.Context, entry *core.Entry) error
}

// resolver is implemented by sinks that can report the handler a ctx
// resolves to without publishing anything.
type resolver interface {
	Handler(ctx context.Context) (handler.Handler, bool)
}

// Handler implements slog.Handler on top of a Publisher.
type Handler struct {
	sink  Publisher
	level core.Level
	attrs []core.Field
	group string
}

// New creates a slog.Handler publishing records at or above level to sink.
func New(sink Publisher, level core.Level) *Handler {
	return &Handler{
		sink:  sink,
		level: level,
	}
}

// Install makes a slog logger publishing to the process-wide delegation
// sink the slog default, and returns it.
func Install(level core.Level) *slog.Logger {
	l := slog.New(New(delegate.Default(), level))
	slog.SetDefault(l)
	return l
}

// Enabled reports whether a record at level would reach a handler. When the
// sink can resolve ctx, a ctx with no handler (or a handler whose own level
// gate rejects the level) is reported as disabled so slog skips building
// the record.
func (s *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	l := LevelToCore(level)
	if l < s.level {
		return false
	}
	r, ok := s.sink.(resolver)
	if !ok {
		return true
	}
	h, ok := r.Handler(ctx)
	if !ok {
		return false
	}
	return handler.Enabled(h, l)
}

// Handle converts the record to a core.Entry and publishes it with ctx.
func (s *Handler) Handle(ctx context.Context, record slog.Record) error {
	entry := core.GetEntry()
	entry.Time = record.Time
	entry.Level = LevelToCore(record.Level)
	entry.Message = record.Message

	if len(s.attrs) > 0 {
		entry.Fields = append(entry.Fields, s.attrs...)
	}
	record.Attrs(func(a slog.Attr) bool {
		entry.Fields = appendAttr(entry.Fields, s.group, a)
		return true
	})

	err := s.sink.Publish(ctx, entry)
	core.PutEntry(entry)
	return err
}

// WithAttrs returns a new Handler with additional attributes.
func (s *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = appendAttr(newAttrs, s.group, a)
	}
	return &Handler{
		sink:  s.sink,
		level: s.level,
		attrs: newAttrs,
		group: s.group,
	}
}

// WithGroup returns a new Handler that qualifies later keys with name.
func (s *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	newGroup := name
	if s.group != "" {
		newGroup = s.group + "." + name
	}
	return &Handler{
		sink:  s.sink,
		level: s.level,
		attrs: s.attrs[:len(s.attrs):len(s.attrs)],
		group: newGroup,
	}
}

// LevelToCore converts a slog.Level to a core.Level.
func LevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

// appendAttr converts a to fields, flattening groups into dotted keys.
func appendAttr(fields []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	switch a.Value.Kind() {
	case slog.KindString:
		return append(fields, core.Field{Key: key, Type: core.StringType, Str: a.Value.String()})
	case slog.KindInt64:
		return append(fields, core.Field{Key: key, Type: core.Int64Type, Int64: a.Value.Int64()})
	case slog.KindUint64:
		return append(fields, core.AnyField(key, a.Value.Uint64()))
	case slog.KindFloat64:
		return append(fields, core.Field{Key: key, Type: core.Float64Type, Float64: a.Value.Float64()})
	case slog.KindBool:
		val := int64(0)
		if a.Value.Bool() {
			val = 1
		}
		return append(fields, core.Field{Key: key, Type: core.BoolType, Int64: val})
	case slog.KindTime:
		return append(fields, core.Field{Key: key, Type: core.TimeType, Int64: a.Value.Time().UnixNano()})
	case slog.KindDuration:
		return append(fields, core.Field{Key: key, Type: core.DurationType, Int64: int64(a.Value.Duration())})
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			fields = appendAttr(fields, key, ga)
		}
		return fields
	default:
		return append(fields, core.AnyField(key, a.Value.Any()))
	}
}
