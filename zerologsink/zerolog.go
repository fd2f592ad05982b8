// Package zerologsink connects rs/zerolog to a tenantlog sink.
//
// Two bridges are offered. Hook routes by the ctx attached to an event
// with Event.Ctx or Logger.WithContext, but zerolog encodes fields before
// hooks run, so only level and message reach the tenant. Writer is bound to
// one ctx and decodes zerolog's JSON output, so every field is kept.
package zerologsink

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/philipp01105/tenantlog/core"
)

// Publisher is the part of a sink the bridges need. *delegate.Sink
// implements it.
type Publisher interface {
	Publish(ctx context.Context, entry *core.Entry) error
}

// Hook is a zerolog.Hook publishing level and message of every event to a
// Publisher, routed by the event's ctx.
type Hook struct {
	sink Publisher
}

// NewHook creates a Hook.
func NewHook(sink Publisher) Hook {
	return Hook{sink: sink}
}

// Run implements zerolog.Hook. zerolog hooks cannot report errors, so a
// handler error is discarded.
func (h Hook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.Disabled {
		return
	}
	ctx := e.GetCtx()
	if ctx == nil {
		ctx = context.Background()
	}

	entry := core.GetEntry()
	entry.Time = time.Now()
	entry.Level = LevelToCore(level)
	entry.Message = msg
	_ = h.sink.Publish(ctx, entry)
	core.PutEntry(entry)
}

// Writer is a zerolog.LevelWriter that decodes each JSON event and
// publishes it with a fixed ctx.
type Writer struct {
	sink Publisher
	ctx  context.Context
}

// NewWriter creates a Writer publishing with ctx.
func NewWriter(ctx context.Context, sink Publisher) *Writer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Writer{sink: sink, ctx: ctx}
}

// Logger returns a zerolog logger writing through a Writer bound to ctx.
func Logger(ctx context.Context, sink Publisher, level zerolog.Level) zerolog.Logger {
	return zerolog.New(NewWriter(ctx, sink)).Level(level).With().Timestamp().Logger()
}

// Write publishes p with the level found in the event itself.
func (w *Writer) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel decodes p and publishes it. The sink's error is returned
// unchanged.
func (w *Writer) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	dec := json.NewDecoder(bytes.NewReader(p))
	dec.UseNumber()
	var event map[string]interface{}
	if err := dec.Decode(&event); err != nil {
		return 0, err
	}

	entry := core.GetEntry()
	if level == zerolog.NoLevel {
		if s, ok := event[zerolog.LevelFieldName].(string); ok {
			if l, err := zerolog.ParseLevel(s); err == nil {
				level = l
			}
		}
	}
	entry.Level = LevelToCore(level)
	if s, ok := event[zerolog.MessageFieldName].(string); ok {
		entry.Message = s
	}
	if t, ok := eventTime(event[zerolog.TimestampFieldName], zerolog.TimeFieldFormat); ok {
		entry.Time = t
	}
	delete(event, zerolog.LevelFieldName)
	delete(event, zerolog.MessageFieldName)
	delete(event, zerolog.TimestampFieldName)

	keys := make([]string, 0, len(event))
	for k := range event {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry.Fields = append(entry.Fields, jsonField(k, event[k]))
	}

	err := w.sink.Publish(w.ctx, entry)
	core.PutEntry(entry)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// eventTime decodes a timestamp written with the given zerolog
// TimeFieldFormat. Numbers are read in the unit the format names, and as
// seconds for zerolog.TimeFormatUnix or any layout string.
func eventTime(v interface{}, format string) (time.Time, bool) {
	switch ts := v.(type) {
	case string:
		t, err := time.Parse(format, ts)
		return t, err == nil
	case json.Number:
		if i, err := ts.Int64(); err == nil {
			switch format {
			case zerolog.TimeFormatUnixMs:
				return time.UnixMilli(i), true
			case zerolog.TimeFormatUnixMicro:
				return time.UnixMicro(i), true
			case zerolog.TimeFormatUnixNano:
				return time.Unix(0, i), true
			default:
				return time.Unix(i, 0), true
			}
		}
		f, err := ts.Float64()
		if err != nil {
			return time.Time{}, false
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)), true
	}
	return time.Time{}, false
}

func jsonField(key string, v interface{}) core.Field {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return core.Field{Key: key, Type: core.Int64Type, Int64: i}
		}
		if f, err := n.Float64(); err == nil {
			return core.Field{Key: key, Type: core.Float64Type, Float64: f}
		}
		return core.Field{Key: key, Type: core.StringType, Str: n.String()}
	}
	return core.AnyField(key, v)
}

// LevelToCore converts a zerolog level to a core.Level. Trace maps to Debug.
func LevelToCore(l zerolog.Level) core.Level {
	switch l {
	case zerolog.PanicLevel:
		return core.PanicLevel
	case zerolog.FatalLevel:
		return core.FatalLevel
	case zerolog.ErrorLevel:
		return core.ErrorLevel
	case zerolog.WarnLevel:
		return core.WarnLevel
	case zerolog.InfoLevel, zerolog.NoLevel:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
