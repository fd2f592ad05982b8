package handler

import "github.com/philipp01105/tenantlog/core"

// LevelFilter forwards entries at or above a minimum level and silently
// discards the rest.
type LevelFilter struct {
	next  Handler
	level core.Level
}

// NewLevelFilter wraps next so that entries below level never reach it.
func NewLevelFilter(next Handler, level core.Level) *LevelFilter {
	return &LevelFilter{next: next, level: level}
}

// Enabled reports whether entries at level pass the filter and any gate
// behind it.
func (f *LevelFilter) Enabled(level core.Level) bool {
	return level >= f.level && Enabled(f.next, level)
}

func (f *LevelFilter) Handle(entry *core.Entry) error {
	if entry.Level < f.level {
		return nil
	}
	return f.next.Handle(entry)
}

func (f *LevelFilter) Flush() error { return f.next.Flush() }

func (f *LevelFilter) Close() error { return f.next.Close() }
