package logger

import "github.com/philipp01105/tenantlog/core"

// Level Re-export type and constants for convenience
type Level = core.Level

const (
	DebugLevel = core.DebugLevel
	InfoLevel  = core.InfoLevel
	WarnLevel  = core.WarnLevel
	ErrorLevel = core.ErrorLevel
	FatalLevel = core.FatalLevel
	PanicLevel = core.PanicLevel
)

// ParseLevel converts a string to a Level, defaulting to InfoLevel for
// unknown names.
func ParseLevel(s string) Level {
	l, _ := core.ParseLevel(s)
	return l
}
