package tenant

import (
	"sync"
	"sync/atomic"

	"github.com/philipp01105/tenantlog/handler"
)

// Context is one execution context. Its identity and handler never change
// after creation.
type Context struct {
	id      string
	handler handler.Handler
	engine  *Engine

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// ID returns the context's identity.
func (c *Context) ID() string {
	return c.id
}

// LogHandler returns the handler configured for the context, or nil when
// the context does not log.
func (c *Context) LogHandler() handler.Handler {
	if c == nil {
		return nil
	}
	return c.handler
}

// Closed reports whether Close has been called.
func (c *Context) Closed() bool {
	return c.closed.Load()
}

// Close destroys the context. From then on it is never reported as current.
// The context's handler is closed unless it is the engine-wide handler,
// which stays open for the other contexts. Close is idempotent; later calls
// return the first result.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.engine.remove(c)
		if c.handler != nil && !handler.SameSink(c.handler, c.engine.logHandler) {
			c.closeErr = c.handler.Close()
		}
	})
	return c.closeErr
}
