package slogsink

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/delegate"
	"github.com/philipp01105/tenantlog/handler"
	"github.com/philipp01105/tenantlog/tenant"
)

func fieldMap(e *core.Entry) map[string]interface{} {
	out := make(map[string]interface{}, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Key] = f.Value()
	}
	return out
}

func TestHandler_Handle(t *testing.T) {
	mem := handler.NewMemoryHandler(0)
	log := slog.New(New(delegate.New(fixed(mem)), core.DebugLevel))

	log.InfoContext(context.Background(), "test message", "key", "value", "count", 42, "ok", true, "d", time.Second)

	entries := mem.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0].Message)
	assert.Equal(t, core.InfoLevel, entries[0].Level)
	assert.Equal(t, map[string]interface{}{
		"key":   "value",
		"count": int64(42),
		"ok":    true,
		"d":     time.Second,
	}, fieldMap(entries[0]))
}

func TestHandler_Enabled(t *testing.T) {
	mem := handler.NewMemoryHandler(0)
	h := New(delegate.New(fixed(mem)), core.InfoLevel)
	ctx := context.Background()

	assert.False(t, h.Enabled(ctx, slog.LevelDebug))
	assert.True(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelError))

	filtered := New(delegate.New(fixed(handler.NewLevelFilter(mem, core.ErrorLevel))), core.DebugLevel)
	assert.False(t, filtered.Enabled(ctx, slog.LevelWarn))
	assert.True(t, filtered.Enabled(ctx, slog.LevelError))
}

func TestHandler_EnabledThroughAsync(t *testing.T) {
	async := handler.NewAsyncHandler(handler.NewLevelFilter(handler.NewMemoryHandler(0), core.WarnLevel), handler.AsyncConfig{})
	defer async.Close()

	h := New(delegate.New(fixed(async)), core.DebugLevel)
	ctx := context.Background()
	assert.False(t, h.Enabled(ctx, slog.LevelInfo))
	assert.True(t, h.Enabled(ctx, slog.LevelWarn))
}

func TestHandler_EnabledWithoutTenant(t *testing.T) {
	h := New(delegate.Default(), core.DebugLevel)
	assert.False(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestHandler_AttrsAndGroups(t *testing.T) {
	mem := handler.NewMemoryHandler(0)
	log := slog.New(New(delegate.New(fixed(mem)), core.DebugLevel)).
		With("app", "svc").
		WithGroup("req")

	log.Info("grouped", "id", 7, slog.Group("user", "name", "alice", "admin", false))

	entries := mem.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, map[string]interface{}{
		"app":            "svc",
		"req.id":         int64(7),
		"req.user.name":  "alice",
		"req.user.admin": false,
	}, fieldMap(entries[0]))
}

func TestHandler_RoutesByTenant(t *testing.T) {
	engine, err := tenant.NewEngine(tenant.EngineConfig{})
	require.NoError(t, err)
	defer engine.Close()

	memA := handler.NewMemoryHandler(0)
	memB := handler.NewMemoryHandler(0)
	a, err := engine.NewContext(tenant.Config{ID: "a", LogHandler: memA})
	require.NoError(t, err)
	b, err := engine.NewContext(tenant.Config{ID: "b", LogHandler: memB})
	require.NoError(t, err)

	log := slog.New(New(delegate.Default(), core.DebugLevel))
	log.InfoContext(tenant.Enter(context.Background(), a), "to a")
	log.InfoContext(tenant.Enter(context.Background(), b), "to b")
	log.InfoContext(context.Background(), "dropped")

	assert.Equal(t, []string{"to a"}, memA.Messages())
	assert.Equal(t, []string{"to b"}, memB.Messages())
}

func TestHandler_ReturnsHandlerError(t *testing.T) {
	boom := errors.New("boom")
	h := New(delegate.New(fixed(failing{err: boom})), core.DebugLevel)

	rec := slog.NewRecord(time.Now(), slog.LevelError, "x", 0)
	assert.Equal(t, boom, h.Handle(context.Background(), rec))
}

func TestInstall(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	l := Install(core.InfoLevel)
	assert.Same(t, l, slog.Default())
}

func TestLevelToCore(t *testing.T) {
	assert.Equal(t, core.DebugLevel, LevelToCore(slog.LevelDebug-4))
	assert.Equal(t, core.InfoLevel, LevelToCore(slog.LevelInfo))
	assert.Equal(t, core.WarnLevel, LevelToCore(slog.LevelWarn+1))
	assert.Equal(t, core.ErrorLevel, LevelToCore(slog.LevelError+4))
}

type execCtx struct{ h handler.Handler }

func (c execCtx) LogHandler() handler.Handler { return c.h }

// fixed resolves every ctx to one execution context owning h.
func fixed(h handler.Handler) delegate.Resolver {
	return delegate.ResolverFunc(func(context.Context) (delegate.ExecutionContext, bool) {
		return execCtx{h: h}, true
	})
}

type failing struct{ err error }

func (f failing) Handle(*core.Entry) error { return f.err }
func (f failing) Flush() error             { return f.err }
func (f failing) Close() error             { return f.err }
