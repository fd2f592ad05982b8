package handler

import (
	"bytes"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/formatter"
)

// ErrClosed is returned by destination handlers used after Close.
var ErrClosed = errors.New("handler: closed")

// StreamConfig holds configuration for a stream handler
type StreamConfig struct {
	// Writer to write to (default: os.Stderr)
	Writer io.Writer
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// CloseStream closes Writer on Close when it implements io.Closer.
	// Leave it false for process-wide streams such as os.Stderr.
	CloseStream bool
	// FlushOnPublish flushes Writer after every entry when it implements
	// Flush() error.
	FlushOnPublish bool
}

// StreamHandler writes formatted entries to an io.Writer synchronously.
type StreamHandler struct {
	writer          io.Writer
	formatter       formatter.Formatter
	bufferFormatter formatter.BufferFormatter
	closeStream     bool
	flushOnPublish  bool
	stats           *Stats

	mu      sync.Mutex // protects syncBuf, writer and closed
	syncBuf bytes.Buffer
	closed  bool
}

// flusher is implemented by buffered writers such as *bufio.Writer.
type flusher interface {
	Flush() error
}

// applyStreamDefaults fills in zero-value fields with defaults.
func applyStreamDefaults(cfg *StreamConfig) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(cfg StreamConfig) *StreamHandler {
	applyStreamDefaults(&cfg)
	h := &StreamHandler{
		writer:         cfg.Writer,
		formatter:      cfg.Formatter,
		closeStream:    cfg.CloseStream,
		flushOnPublish: cfg.FlushOnPublish,
		stats:          NewStats(),
	}
	h.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)
	if h.bufferFormatter != nil {
		h.syncBuf.Grow(256)
	}
	return h
}

// Handle formats the entry and writes it under the handler lock.
func (h *StreamHandler) Handle(entry *core.Entry) error {
	var data []byte
	if h.bufferFormatter == nil {
		var err error
		if data, err = h.formatter.Format(entry); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	if h.bufferFormatter != nil {
		h.syncBuf.Reset()
		h.bufferFormatter.FormatEntry(entry, &h.syncBuf)
		data = h.syncBuf.Bytes()
	}
	if _, err := h.writer.Write(data); err != nil {
		return err
	}
	if h.flushOnPublish {
		if err := h.flushLocked(); err != nil {
			return err
		}
	}
	h.stats.IncrementProcessed()
	return nil
}

// Flush flushes the writer if it buffers output.
func (h *StreamHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	return h.flushLocked()
}

func (h *StreamHandler) flushLocked() error {
	if f, ok := h.writer.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close flushes the writer and, when CloseStream is set, closes it.
// Closing twice is a no-op.
func (h *StreamHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	err := h.flushLocked()
	if h.closeStream {
		if c, ok := h.writer.(io.Closer); ok {
			if cerr := c.Close(); err == nil {
				err = cerr
			}
		}
	}
	return err
}

// Stats returns a snapshot of the current statistics
func (h *StreamHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}
