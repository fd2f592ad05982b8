package handler

import (
	"sync"
	"time"

	"github.com/philipp01105/tenantlog/core"
)

// AsyncConfig holds configuration for an async handler
type AsyncConfig struct {
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-level overflow behavior (default: uses DefaultLevelPolicy)
	OverflowPolicy map[core.Level]OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// applyAsyncDefaults fills in zero-value fields with defaults.
func applyAsyncDefaults(cfg *AsyncConfig) {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.OverflowPolicy == nil {
		cfg.OverflowPolicy = DefaultLevelPolicy()
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
}

// AsyncHandler decouples callers from a slow destination. Entries are cloned
// into a bounded queue and written to the inner handler by one background
// goroutine. When the queue is full the per-level OverflowPolicy decides
// whether the entry is dropped or the caller waits.
type AsyncHandler struct {
	inner          Handler
	queue          chan *core.Entry
	flushReq       chan chan error
	closed         chan struct{}
	// sendMu orders enqueues before Close; Handle holds it shared.
	sendMu         sync.RWMutex
	closeOnce      sync.Once
	wg             sync.WaitGroup
	overflowPolicy map[core.Level]OverflowPolicy
	blockTimeout   time.Duration
	drainTimeout   time.Duration
	stats          *Stats

	timerMu    sync.Mutex
	blockTimer *time.Timer
}

// NewAsyncHandler wraps inner with an asynchronous queue.
func NewAsyncHandler(inner Handler, cfg AsyncConfig) *AsyncHandler {
	applyAsyncDefaults(&cfg)
	h := &AsyncHandler{
		inner:          inner,
		queue:          make(chan *core.Entry, cfg.BufferSize),
		flushReq:       make(chan chan error),
		closed:         make(chan struct{}),
		overflowPolicy: cfg.OverflowPolicy,
		blockTimeout:   cfg.BlockTimeout,
		drainTimeout:   cfg.DrainTimeout,
		stats:          NewStats(),
		blockTimer:     newStoppedTimer(),
	}
	h.wg.Add(1)
	go h.process()
	return h
}

// Handle enqueues a copy of the entry with overflow policy handling.
func (h *AsyncHandler) Handle(entry *core.Entry) error {
	h.sendMu.RLock()
	defer h.sendMu.RUnlock()
	select {
	case <-h.closed:
		return ErrClosed
	default:
	}

	queued := entry.Clone()

	policy, ok := h.overflowPolicy[entry.Level]
	if !ok {
		policy = DropNewest
	}

	switch policy {
	case Block:
		select {
		case h.queue <- queued:
			return nil
		default:
		}
		return h.enqueueBlocking(queued)

	case DropOldest:
		select {
		case h.queue <- queued:
			return nil
		default:
			select {
			case <-h.queue:
				h.stats.IncrementDropped(entry.Level)
			default:
			}
			select {
			case h.queue <- queued:
			default:
				h.stats.IncrementDropped(entry.Level)
			}
			return nil
		}

	default:
		select {
		case h.queue <- queued:
		default:
			h.stats.IncrementDropped(entry.Level)
		}
		return nil
	}
}

// enqueueBlocking waits up to blockTimeout for queue space and falls back
// to a synchronous write on timeout or close.
func (h *AsyncHandler) enqueueBlocking(entry *core.Entry) error {
	h.timerMu.Lock()
	defer h.timerMu.Unlock()

	h.blockTimer.Reset(h.blockTimeout)
	defer func() {
		if !h.blockTimer.Stop() {
			select {
			case <-h.blockTimer.C:
			default:
			}
		}
	}()

	select {
	case h.queue <- entry:
		return nil
	case <-h.blockTimer.C:
		h.stats.IncrementBlocked()
		return h.write(entry)
	case <-h.closed:
		return h.write(entry)
	}
}

func (h *AsyncHandler) write(entry *core.Entry) error {
	if err := h.inner.Handle(entry); err != nil {
		return err
	}
	h.stats.IncrementProcessed()
	return nil
}

// drain writes every entry currently queued. Write errors do not stop the
// drain; the first one is returned.
func (h *AsyncHandler) drain(deadline <-chan time.Time) error {
	var first error
	for {
		select {
		case entry := <-h.queue:
			if err := h.write(entry); err != nil && first == nil {
				first = err
			}
		case <-deadline:
			return first
		default:
			return first
		}
	}
}

// process handles async log processing
func (h *AsyncHandler) process() {
	defer h.wg.Done()

	for {
		select {
		case entry := <-h.queue:
			_ = h.write(entry)
		case reply := <-h.flushReq:
			err := h.drain(nil)
			if ferr := h.inner.Flush(); err == nil {
				err = ferr
			}
			reply <- err
		case <-h.closed:
			_ = h.drain(time.After(h.drainTimeout))
			return
		}
	}
}

// Flush blocks until the entries queued before the call have been written,
// then flushes the inner handler.
func (h *AsyncHandler) Flush() error {
	reply := make(chan error, 1)
	select {
	case h.flushReq <- reply:
		return <-reply
	case <-h.closed:
		return nil
	}
}

// Close drains the queue (bounded by DrainTimeout) and closes the inner
// handler. Closing twice is a no-op.
func (h *AsyncHandler) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.sendMu.Lock()
		close(h.closed)
		h.sendMu.Unlock()
		h.wg.Wait()
		err = h.inner.Close()
	})
	return err
}

// Enabled forwards to the wrapped handler's level gate.
func (h *AsyncHandler) Enabled(level core.Level) bool {
	return Enabled(h.inner, level)
}

// Stats returns a snapshot of the current statistics
func (h *AsyncHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}
