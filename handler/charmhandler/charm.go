// Package charmhandler provides a colorized console destination built on
// github.com/charmbracelet/log, for tenants that log to an interactive
// terminal.
package charmhandler

import (
	"io"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/handler"
)

// Config holds configuration for the console handler
type Config struct {
	// Writer to write to (default: os.Stderr)
	Writer io.Writer
	// Prefix is printed before every message, usually the tenant name.
	Prefix string
	// Format selects the charm formatter: "text" (default), "json" or "logfmt".
	Format string
	// TimeFormat overrides the timestamp layout.
	TimeFormat string
	// ReportCaller prints the caller recorded in the entry.
	ReportCaller bool
}

// Handler renders entries through a charm logger. It never closes the
// writer it was given.
type Handler struct {
	logger       *log.Logger
	writer       io.Writer
	reportCaller bool
	closed       atomic.Bool

	// mu pins the timestamp charm reads to the entry being rendered.
	mu        sync.Mutex
	entryTime time.Time
}

// New creates a console handler
func New(cfg Config) *Handler {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}
	h := &Handler{
		writer:       cfg.Writer,
		reportCaller: cfg.ReportCaller,
	}
	opts := log.Options{
		Prefix:          cfg.Prefix,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.DebugLevel,
		Formatter:       formatterFor(cfg.Format),
		TimeFunction:    h.timestamp,
	}
	h.logger = log.NewWithOptions(cfg.Writer, opts)
	return h
}

// timestamp is charm's TimeFunction: it reports the time of the entry being
// rendered rather than the render time, which lags behind async queues.
func (h *Handler) timestamp(now time.Time) time.Time {
	if h.entryTime.IsZero() {
		return now
	}
	return h.entryTime
}

func formatterFor(name string) log.Formatter {
	switch name {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Handle renders the entry. Fatal and Panic entries are printed at charm's
// fatal level without terminating the process.
func (h *Handler) Handle(entry *core.Entry) error {
	if h.closed.Load() {
		return handler.ErrClosed
	}
	keyvals := make([]interface{}, 0, 2*len(entry.Fields)+2)
	if h.reportCaller && entry.Caller.Defined {
		keyvals = append(keyvals, "caller", entry.Caller.ShortFile+":"+strconv.Itoa(entry.Caller.Line))
	}
	for _, f := range entry.Fields {
		keyvals = append(keyvals, f.Key, f.Value())
	}
	h.mu.Lock()
	h.entryTime = entry.Time
	h.logger.Log(charmLevel(entry.Level), entry.Message, keyvals...)
	h.entryTime = time.Time{}
	h.mu.Unlock()
	return nil
}

// Flush flushes the writer if it buffers output.
func (h *Handler) Flush() error {
	if f, ok := h.writer.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close marks the handler closed; the writer stays open.
func (h *Handler) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	return h.Flush()
}

func charmLevel(l core.Level) log.Level {
	switch l {
	case core.DebugLevel:
		return log.DebugLevel
	case core.InfoLevel:
		return log.InfoLevel
	case core.WarnLevel:
		return log.WarnLevel
	case core.ErrorLevel:
		return log.ErrorLevel
	default:
		return log.FatalLevel
	}
}
