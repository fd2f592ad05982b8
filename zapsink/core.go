// Package zapsink provides a zapcore.Core that publishes through a
// tenantlog sink.
//
// zap has no per-call context, so the routing ctx is attached either once,
// with NewCore or Logger, or per entry with the Context field:
//
//	log := zapsink.Logger(context.Background(), delegate.Default(), zapcore.DebugLevel)
//	log.Info("served", zapsink.Context(ctx), zap.Int("status", 200))
package zapsink

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/tenantlog/core"
)

// ctxFieldKey marks the field carrying the routing ctx. The field has
// zapcore.SkipType so regular zap encoders ignore it.
const ctxFieldKey = "tenantlog.ctx"

// Sink is the part of a tenantlog sink the core needs. *delegate.Sink
// implements it.
type Sink interface {
	Publish(ctx context.Context, entry *core.Entry) error
	Flush(ctx context.Context) error
}

// Core is a zapcore.Core publishing every entry to a Sink.
type Core struct {
	zapcore.LevelEnabler
	sink   Sink
	ctx    context.Context
	fields []core.Field
}

// NewCore creates a Core that publishes entries at or above enab with ctx,
// unless an entry carries its own Context field.
func NewCore(ctx context.Context, sink Sink, enab zapcore.LevelEnabler) *Core {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Core{LevelEnabler: enab, sink: sink, ctx: ctx}
}

// Logger is shorthand for zap.New(NewCore(ctx, sink, enab)).
func Logger(ctx context.Context, sink Sink, enab zapcore.LevelEnabler, opts ...zap.Option) *zap.Logger {
	return zap.New(NewCore(ctx, sink, enab), opts...)
}

// Context returns a field that routes the entry it is logged with (or, via
// With, every entry of the child logger) by ctx.
func Context(ctx context.Context) zap.Field {
	return zap.Field{Key: ctxFieldKey, Type: zapcore.SkipType, Interface: ctx}
}

// With returns a child core carrying fields. A Context field replaces the
// routing ctx of the child.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	ctx, converted := c.convert(fields)
	child := &Core{
		LevelEnabler: c.LevelEnabler,
		sink:         c.sink,
		ctx:          ctx,
		fields:       make([]core.Field, 0, len(c.fields)+len(converted)),
	}
	child.fields = append(child.fields, c.fields...)
	child.fields = append(child.fields, converted...)
	return child
}

// Check adds the core to ce when ent's level is enabled.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write publishes ent and returns the sink's error unchanged.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ctx, converted := c.convert(fields)

	entry := core.GetEntry()
	entry.Time = ent.Time
	entry.Level = LevelToCore(ent.Level)
	entry.Message = ent.Message
	if ent.LoggerName != "" {
		entry.Fields = append(entry.Fields, core.Field{Key: "logger", Type: core.StringType, Str: ent.LoggerName})
	}
	entry.Fields = append(entry.Fields, c.fields...)
	entry.Fields = append(entry.Fields, converted...)
	if ent.Caller.Defined {
		entry.Caller = core.CallerInfo{
			File:      ent.Caller.File,
			ShortFile: filepath.Base(ent.Caller.File),
			Line:      ent.Caller.Line,
			Function:  ent.Caller.Function,
			Defined:   true,
		}
	}

	err := c.sink.Publish(ctx, entry)
	core.PutEntry(entry)
	return err
}

// Sync flushes the handler the core's ctx resolves to.
func (c *Core) Sync() error {
	return c.sink.Flush(c.ctx)
}

// convert turns zap fields into core fields and picks up a routing ctx.
func (c *Core) convert(fields []zapcore.Field) (context.Context, []core.Field) {
	ctx := c.ctx
	if len(fields) == 0 {
		return ctx, nil
	}
	out := make([]core.Field, 0, len(fields))
	for i := range fields {
		f := &fields[i]
		if f.Key == ctxFieldKey && f.Type == zapcore.SkipType {
			if fc, ok := f.Interface.(context.Context); ok && fc != nil {
				ctx = fc
			}
			continue
		}
		out = appendField(out, f)
	}
	return ctx, out
}

func appendField(out []core.Field, f *zapcore.Field) []core.Field {
	switch f.Type {
	case zapcore.StringType:
		return append(out, core.Field{Key: f.Key, Type: core.StringType, Str: f.String})
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		return append(out, core.Field{Key: f.Key, Type: core.Int64Type, Int64: f.Integer})
	case zapcore.BoolType:
		return append(out, core.Field{Key: f.Key, Type: core.BoolType, Int64: f.Integer})
	case zapcore.DurationType:
		return append(out, core.Field{Key: f.Key, Type: core.DurationType, Int64: f.Integer})
	case zapcore.SkipType:
		return out
	}

	// Everything else goes through zap's own encoding so the value matches
	// what a zap encoder would have produced.
	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	for k, v := range enc.Fields {
		out = append(out, core.AnyField(k, v))
	}
	return out
}

// LevelToCore converts a zap level to a core.Level. DPanic maps to Error.
func LevelToCore(l zapcore.Level) core.Level {
	switch {
	case l >= zapcore.FatalLevel:
		return core.FatalLevel
	case l >= zapcore.PanicLevel:
		return core.PanicLevel
	case l >= zapcore.ErrorLevel:
		return core.ErrorLevel
	case l >= zapcore.WarnLevel:
		return core.WarnLevel
	case l >= zapcore.InfoLevel:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}
