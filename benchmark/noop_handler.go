// Package benchmark measures the cost of routing records through the
// delegation sink from each supported logging front end.
package benchmark

import (
	"sync/atomic"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/handler"
)

// noopHandler counts entries and discards them.
type noopHandler struct {
	n atomic.Uint64
}

func newNoopHandler() *noopHandler {
	return &noopHandler{}
}

func (h *noopHandler) Handle(e *core.Entry) error {
	_ = len(e.Message)
	h.n.Add(1)
	return nil
}

func (h *noopHandler) Flush() error { return nil }

func (h *noopHandler) Close() error { return nil }

// Count returns how many entries were handled.
func (h *noopHandler) Count() uint64 {
	return h.n.Load()
}

var _ handler.Handler = (*noopHandler)(nil)
