package handler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/tenantlog/core"
)

// MultiHandler sends log entries to multiple handlers
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Handle sends the entry to every child. A failing child does not stop the
// others; all failures are combined.
func (h *MultiHandler) Handle(entry *core.Entry) error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Handle(entry))
	}
	return err
}

// Flush flushes all handlers
func (h *MultiHandler) Flush() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Flush())
	}
	return err
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Close())
	}
	return err
}
