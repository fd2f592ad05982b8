package handler

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/philipp01105/tenantlog/core"
)

// OverflowPolicy decides what an AsyncHandler does with an entry when its
// queue is full.
type OverflowPolicy int

const (
	// DropNewest discards the incoming entry.
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the longest-queued entry to make room.
	DropOldest
	// Block makes the caller wait up to BlockTimeout, then writes inline.
	Block
)

func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "drop_newest"
	case DropOldest:
		return "drop_oldest"
	case Block:
		return "block"
	default:
		return fmt.Sprintf("OverflowPolicy(%d)", int(p))
	}
}

// ParseOverflowPolicy accepts the names returned by String.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop_newest":
		return DropNewest, nil
	case "drop_oldest":
		return DropOldest, nil
	case "block":
		return Block, nil
	}
	return DropNewest, fmt.Errorf("handler: unknown overflow policy %q", s)
}

// DefaultLevelPolicy drops chatty levels and blocks for error and above, so a
// flooded tenant loses debug output before it loses failures.
func DefaultLevelPolicy() map[core.Level]OverflowPolicy {
	return UniformPolicy(DropNewest, core.ErrorLevel, Block)
}

// UniformPolicy applies below to every level under threshold and atOrAbove
// to the rest.
func UniformPolicy(below OverflowPolicy, threshold core.Level, atOrAbove OverflowPolicy) map[core.Level]OverflowPolicy {
	m := make(map[core.Level]OverflowPolicy, numLevels)
	for l := core.DebugLevel; l <= core.PanicLevel; l++ {
		if l < threshold {
			m[l] = below
		} else {
			m[l] = atOrAbove
		}
	}
	return m
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return t
}

const numLevels = int(core.PanicLevel) + 1

// Stats counts what a handler did with the entries handed to it.
type Stats struct {
	dropped   [numLevels]atomic.Uint64
	blocked   atomic.Uint64
	processed atomic.Uint64
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{}
}

func levelIndex(l core.Level) int {
	if l < core.DebugLevel {
		return 0
	}
	if l > core.PanicLevel {
		return numLevels - 1
	}
	return int(l)
}

// IncrementDropped counts one entry at level lost to overflow.
func (s *Stats) IncrementDropped(level core.Level) {
	s.dropped[levelIndex(level)].Add(1)
}

// IncrementBlocked counts one caller that had to wait for queue space.
func (s *Stats) IncrementBlocked() {
	s.blocked.Add(1)
}

// IncrementProcessed counts one entry written to the destination.
func (s *Stats) IncrementProcessed() {
	s.processed.Add(1)
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	for i := range s.dropped {
		s.dropped[i].Store(0)
	}
	s.blocked.Store(0)
	s.processed.Store(0)
}

// Snapshot is a point-in-time copy of Stats. DroppedTotal only carries
// levels that lost entries.
type Snapshot struct {
	DroppedTotal   map[core.Level]uint64
	BlockedTotal   uint64
	ProcessedTotal uint64
}

// Dropped sums DroppedTotal over all levels.
func (s Snapshot) Dropped() uint64 {
	var n uint64
	for _, v := range s.DroppedTotal {
		n += v
	}
	return n
}

// GetSnapshot copies the counters.
func (s *Stats) GetSnapshot() Snapshot {
	snap := Snapshot{
		DroppedTotal:   make(map[core.Level]uint64),
		BlockedTotal:   s.blocked.Load(),
		ProcessedTotal: s.processed.Load(),
	}
	for i := range s.dropped {
		if n := s.dropped[i].Load(); n > 0 {
			snap.DroppedTotal[core.Level(i)] = n
		}
	}
	return snap
}
