package logrussink

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/delegate"
	"github.com/philipp01105/tenantlog/handler"
	"github.com/philipp01105/tenantlog/tenant"
)

func TestHook_RoutesByContext(t *testing.T) {
	engine, err := tenant.NewEngine(tenant.EngineConfig{})
	require.NoError(t, err)
	defer engine.Close()

	memA := handler.NewMemoryHandler(0)
	memB := handler.NewMemoryHandler(0)
	a, err := engine.NewContext(tenant.Config{ID: "a", LogHandler: memA})
	require.NoError(t, err)
	b, err := engine.NewContext(tenant.Config{ID: "b", LogHandler: memB})
	require.NoError(t, err)

	log := NewLogger(delegate.Default(), logrus.DebugLevel)
	log.WithContext(tenant.Enter(context.Background(), a)).Info("to a")
	log.WithContext(tenant.Enter(context.Background(), b)).Warn("to b")
	log.Info("dropped")

	assert.Equal(t, []string{"to a"}, memA.Messages())
	assert.Equal(t, []string{"to b"}, memB.Messages())
	assert.Equal(t, core.WarnLevel, memB.Entries()[0].Level)
}

func TestHook_Fields(t *testing.T) {
	mem := handler.NewMemoryHandler(0)
	log := NewLogger(delegate.New(fixed(mem)), logrus.DebugLevel)

	log.WithFields(logrus.Fields{
		"status": 200,
		"method": "GET",
		"ok":     true,
	}).Info("request")

	entries := mem.Entries()
	require.Len(t, entries, 1)
	fields := entries[0].Fields
	require.Len(t, fields, 3)
	// Keys are sorted.
	assert.Equal(t, "method", fields[0].Key)
	assert.Equal(t, "GET", fields[0].Value())
	assert.Equal(t, "ok", fields[1].Key)
	assert.Equal(t, true, fields[1].Value())
	assert.Equal(t, "status", fields[2].Key)
	assert.Equal(t, int64(200), fields[2].Value())
}

func TestHook_Levels(t *testing.T) {
	h := NewHook(delegate.Default(), logrus.WarnLevel)
	assert.Equal(t, []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}, h.Levels())
}

func TestHook_FireReturnsHandlerError(t *testing.T) {
	boom := errors.New("boom")
	h := NewHook(delegate.New(fixed(failing{err: boom})), logrus.DebugLevel)

	err := h.Fire(&logrus.Entry{Level: logrus.ErrorLevel, Message: "x"})
	assert.Equal(t, boom, err)
}

func TestLevelToCore(t *testing.T) {
	assert.Equal(t, core.DebugLevel, LevelToCore(logrus.TraceLevel))
	assert.Equal(t, core.DebugLevel, LevelToCore(logrus.DebugLevel))
	assert.Equal(t, core.InfoLevel, LevelToCore(logrus.InfoLevel))
	assert.Equal(t, core.WarnLevel, LevelToCore(logrus.WarnLevel))
	assert.Equal(t, core.ErrorLevel, LevelToCore(logrus.ErrorLevel))
	assert.Equal(t, core.FatalLevel, LevelToCore(logrus.FatalLevel))
	assert.Equal(t, core.PanicLevel, LevelToCore(logrus.PanicLevel))
}

type execCtx struct{ h handler.Handler }

func (c execCtx) LogHandler() handler.Handler { return c.h }

func fixed(h handler.Handler) delegate.Resolver {
	return delegate.ResolverFunc(func(context.Context) (delegate.ExecutionContext, bool) {
		return execCtx{h: h}, true
	})
}

type failing struct{ err error }

func (f failing) Handle(*core.Entry) error { return f.err }
func (f failing) Flush() error             { return f.err }
func (f failing) Close() error             { return f.err }
