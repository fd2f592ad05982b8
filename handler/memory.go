package handler

import (
	"sync"

	"github.com/philipp01105/tenantlog/core"
)

// MemoryHandler keeps published entries in memory. Flush and Close calls
// are counted so callers can observe them.
type MemoryHandler struct {
	mu      sync.Mutex
	entries []*core.Entry
	limit   int
	flushes int
	closes  int
}

// NewMemoryHandler returns a MemoryHandler retaining at most limit entries
// (0 = unbounded). When full, the oldest entry is discarded.
func NewMemoryHandler(limit int) *MemoryHandler {
	return &MemoryHandler{limit: limit}
}

func (m *MemoryHandler) Handle(entry *core.Entry) error {
	c := entry.Clone()
	m.mu.Lock()
	if m.limit > 0 && len(m.entries) >= m.limit {
		copy(m.entries, m.entries[1:])
		m.entries = m.entries[:len(m.entries)-1]
	}
	m.entries = append(m.entries, c)
	m.mu.Unlock()
	return nil
}

func (m *MemoryHandler) Flush() error {
	m.mu.Lock()
	m.flushes++
	m.mu.Unlock()
	return nil
}

func (m *MemoryHandler) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	return nil
}

// Entries returns a copy of the retained entries, oldest first.
func (m *MemoryHandler) Entries() []*core.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*core.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Messages returns the messages of the retained entries, oldest first.
func (m *MemoryHandler) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Message
	}
	return out
}

// Flushes returns how many times Flush was called.
func (m *MemoryHandler) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Closes returns how many times Close was called.
func (m *MemoryHandler) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Reset discards all retained entries and counters.
func (m *MemoryHandler) Reset() {
	m.mu.Lock()
	m.entries = nil
	m.flushes = 0
	m.closes = 0
	m.mu.Unlock()
}
