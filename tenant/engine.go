package tenant

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/philipp01105/tenantlog/handler"
)

var (
	// ErrClosed is returned when creating a context on a closed engine.
	ErrClosed = errors.New("tenant: engine closed")
	// ErrDuplicateID is returned when a context ID is already in use.
	ErrDuplicateID = errors.New("tenant: duplicate context id")
)

// EngineConfig holds settings shared by every context of an engine.
type EngineConfig struct {
	// LogHandler is the engine-wide log sink: a handler.Handler or an
	// io.Writer. Contexts without their own sink use it. Closing the engine
	// closes it.
	LogHandler interface{}
	// ErrWriter is the fallback stream for contexts that have neither their
	// own sink nor an engine-wide one. It is never closed.
	ErrWriter io.Writer
}

// Config describes one execution context.
type Config struct {
	// ID identifies the context. Empty means "generate one".
	ID string
	// LogHandler is the context's own log sink: a handler.Handler or an
	// io.Writer. The context owns it and closes it on Close.
	LogHandler interface{}
	// ErrWriter overrides EngineConfig.ErrWriter for this context.
	ErrWriter io.Writer
	// Silent creates the context without any log handler.
	Silent bool
}

// Engine creates and tracks execution contexts.
type Engine struct {
	logHandler handler.Handler
	errWriter  io.Writer
	seq        atomic.Uint64

	mu       sync.Mutex
	contexts map[string]*Context
	closed   bool
}

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	h, err := handler.AsHandler(cfg.LogHandler)
	if err != nil {
		return nil, fmt.Errorf("engine log handler: %w", err)
	}
	return &Engine{
		logHandler: h,
		errWriter:  cfg.ErrWriter,
		contexts:   make(map[string]*Context),
	}, nil
}

// LogHandler returns the engine-wide handler, or nil.
func (e *Engine) LogHandler() handler.Handler {
	return e.logHandler
}

// NewContext creates and registers an execution context.
func (e *Engine) NewContext(cfg Config) (*Context, error) {
	h, err := e.resolveHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("context %q log handler: %w", cfg.ID, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	id := cfg.ID
	if id == "" {
		id = "ctx-" + strconv.FormatUint(e.seq.Add(1), 10)
	}
	if _, exists := e.contexts[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	c := &Context{id: id, handler: h, engine: e}
	e.contexts[id] = c
	return c, nil
}

func (e *Engine) resolveHandler(cfg Config) (handler.Handler, error) {
	if cfg.Silent {
		return nil, nil
	}
	h, err := handler.AsHandler(cfg.LogHandler)
	if err != nil || h != nil {
		return h, err
	}
	if e.logHandler != nil {
		return e.logHandler, nil
	}
	w := cfg.ErrWriter
	if w == nil {
		w = e.errWriter
	}
	if w == nil {
		return nil, nil
	}
	// Wrapped unclosed and flushed per entry; a typed-nil writer means none.
	return handler.AsHandler(w)
}

// Context returns the open context registered under id.
func (e *Engine) Context(id string) (*Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.contexts[id]
	return c, ok
}

// Contexts returns the open contexts ordered by ID.
func (e *Engine) Contexts() []*Context {
	e.mu.Lock()
	out := make([]*Context, 0, len(e.contexts))
	for _, c := range e.contexts {
		out = append(out, c)
	}
	e.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (e *Engine) remove(c *Context) {
	e.mu.Lock()
	if e.contexts[c.id] == c {
		delete(e.contexts, c.id)
	}
	e.mu.Unlock()
}

// Close closes every open context, then the engine-wide handler. Errors
// from all of them are combined.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	var err error
	for _, c := range e.Contexts() {
		err = multierr.Append(err, c.Close())
	}
	if e.logHandler != nil {
		err = multierr.Append(err, e.logHandler.Close())
	}
	return err
}
