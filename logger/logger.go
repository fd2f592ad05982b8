package logger

import (
	"context"
	"fmt"
	"os"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/handler"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Sink receives the entries a Logger emits. *delegate.Sink implements it;
// the ctx of every call decides which tenant the entry belongs to.
type Sink interface {
	Publish(ctx context.Context, entry *core.Entry) error
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// handlerSink pins a Logger to one handler regardless of ctx.
type handlerSink struct {
	h handler.Handler
}

func (s handlerSink) Publish(_ context.Context, e *core.Entry) error { return s.h.Handle(e) }
func (s handlerSink) Flush(context.Context) error                    { return s.h.Flush() }
func (s handlerSink) Close(context.Context) error                    { return s.h.Close() }

// Logger is the main logging interface (immutable)
type Logger struct {
	sink          Sink
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	sink          Sink
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel,
		callerSkip: 2,
	}
}

// WithSink sets the sink entries are published to.
func (b *Builder) WithSink(s Sink) *Builder {
	b.sink = s
	return b
}

// WithHandler publishes every entry to h, whatever the caller's context.
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	if h == nil {
		b.sink = nil
		return b
	}
	b.sink = handlerSink{h: h}
	return b
}

// WithLevel sets the log level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithFields adds default fields to all log entries
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	fields := make([]core.Field, len(b.fields))
	copy(fields, b.fields)
	return &Logger{
		sink:          b.sink,
		level:         b.level,
		fields:        fields,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
	}
}

// With creates a new Logger with additional fields (immutable operation)
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &Logger{
		sink:          l.sink,
		level:         l.level,
		fields:        newFields,
		includeCaller: l.includeCaller,
		callerSkip:    l.callerSkip,
	}
}

// Enabled reports whether entries at level pass the logger's level gate.
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.level && l.sink != nil
}

// Log publishes a message at the specified level and returns the sink's
// error, which is the destination handler's error unchanged.
func (l *Logger) Log(ctx context.Context, level core.Level, msg string, fields ...core.Field) error {
	if level < l.level {
		return nil
	}
	return l.log(ctx, level, msg, fields)
}

// log builds a pooled entry, publishes it and recycles it.
func (l *Logger) log(ctx context.Context, level core.Level, msg string, fields []core.Field) error {
	if l.sink == nil {
		return nil
	}

	entry := core.GetEntry()
	entry.Level = level
	entry.Message = msg
	if len(l.fields) > 0 {
		entry.Fields = append(entry.Fields, l.fields...)
	}
	if len(fields) > 0 {
		entry.Fields = append(entry.Fields, fields...)
	}
	if l.includeCaller {
		entry.Caller = core.GetCaller(l.callerSkip)
	}

	err := l.sink.Publish(ctx, entry)
	core.PutEntry(entry)
	return err
}

// Debug logs a debug message
func (l *Logger) Debug(ctx context.Context, msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	_ = l.log(ctx, core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(ctx context.Context, msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	_ = l.log(ctx, core.InfoLevel, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(ctx context.Context, msg string, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	_ = l.log(ctx, core.WarnLevel, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(ctx context.Context, msg string, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	_ = l.log(ctx, core.ErrorLevel, msg, fields)
}

// Fatal logs a fatal message, flushes the tenant's handler and exits the
// program with os.Exit(1)
func (l *Logger) Fatal(ctx context.Context, msg string, fields ...core.Field) {
	_ = l.log(ctx, core.FatalLevel, msg, fields)
	_ = l.Flush(ctx)
	osExit(1)
}

// Panic logs a panic message and panics
func (l *Logger) Panic(ctx context.Context, msg string, fields ...core.Field) {
	_ = l.log(ctx, core.PanicLevel, msg, fields)
	panic(msg)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(ctx context.Context, format string, args ...interface{}) {
	if core.DebugLevel < l.level {
		return
	}
	_ = l.log(ctx, core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(ctx context.Context, format string, args ...interface{}) {
	if core.InfoLevel < l.level {
		return
	}
	_ = l.log(ctx, core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(ctx context.Context, format string, args ...interface{}) {
	if core.WarnLevel < l.level {
		return
	}
	_ = l.log(ctx, core.WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(ctx context.Context, format string, args ...interface{}) {
	if core.ErrorLevel < l.level {
		return
	}
	_ = l.log(ctx, core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Flush flushes the handler selected by ctx.
func (l *Logger) Flush(ctx context.Context) error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Flush(ctx)
}

// Close closes the handler selected by ctx.
func (l *Logger) Close(ctx context.Context) error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Close(ctx)
}
