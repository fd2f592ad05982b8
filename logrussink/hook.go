// Package logrussink provides a logrus hook that publishes entries through
// a tenantlog sink, routed by the ctx set with logrus' WithContext.
package logrussink

import (
	"context"
	"io"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/philipp01105/tenantlog/core"
)

// Publisher is the part of a sink the hook needs. *delegate.Sink
// implements it.
type Publisher interface {
	Publish(ctx context.Context, entry *core.Entry) error
}

// Hook is a logrus.Hook publishing every entry to a Publisher.
type Hook struct {
	sink   Publisher
	levels []logrus.Level
}

// NewHook returns a hook firing for entries at or above level.
func NewHook(sink Publisher, level logrus.Level) *Hook {
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		// logrus orders levels from most to least severe.
		if l <= level {
			levels = append(levels, l)
		}
	}
	return &Hook{sink: sink, levels: levels}
}

// NewLogger returns a logrus logger whose own output is discarded, so
// entries only reach the tenant handlers through the hook.
func NewLogger(sink Publisher, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(level)
	l.AddHook(NewHook(sink, level))
	return l
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire publishes e with e.Context, or context.Background when the entry
// was logged without one. The sink's error is returned unchanged.
func (h *Hook) Fire(e *logrus.Entry) error {
	ctx := e.Context
	if ctx == nil {
		ctx = context.Background()
	}

	entry := core.GetEntry()
	entry.Time = e.Time
	entry.Level = LevelToCore(e.Level)
	entry.Message = e.Message

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry.Fields = append(entry.Fields, core.AnyField(k, e.Data[k]))
	}

	if e.Caller != nil {
		entry.Caller = core.CallerInfo{
			File:      e.Caller.File,
			ShortFile: filepath.Base(e.Caller.File),
			Line:      e.Caller.Line,
			Function:  e.Caller.Function,
			Defined:   true,
		}
	}

	err := h.sink.Publish(ctx, entry)
	core.PutEntry(entry)
	return err
}

// LevelToCore converts a logrus level to a core.Level. Trace maps to Debug.
func LevelToCore(l logrus.Level) core.Level {
	switch l {
	case logrus.PanicLevel:
		return core.PanicLevel
	case logrus.FatalLevel:
		return core.FatalLevel
	case logrus.ErrorLevel:
		return core.ErrorLevel
	case logrus.WarnLevel:
		return core.WarnLevel
	case logrus.InfoLevel:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
