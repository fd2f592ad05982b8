package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/philipp01105/tenantlog/core"
)

// gatedHandler blocks every Handle until release is closed.
type gatedHandler struct {
	*MemoryHandler
	release chan struct{}
	once    sync.Once
}

func newGatedHandler() *gatedHandler {
	return &gatedHandler{MemoryHandler: NewMemoryHandler(0), release: make(chan struct{})}
}

func (g *gatedHandler) Handle(entry *core.Entry) error {
	<-g.release
	return g.MemoryHandler.Handle(entry)
}

func (g *gatedHandler) open() {
	g.once.Do(func() { close(g.release) })
}

func TestAsyncHandler_Delivers(t *testing.T) {
	mem := NewMemoryHandler(0)
	h := NewAsyncHandler(mem, AsyncConfig{BufferSize: 10})
	defer h.Close()

	entry := newEntry(core.InfoLevel, "async test")
	if err := h.Handle(entry); err != nil {
		t.Errorf("Handle() error = %v", err)
	}
	core.PutEntry(entry)

	if err := h.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	got := mem.Messages()
	if len(got) != 1 || got[0] != "async test" {
		t.Errorf("Messages() = %v, want [async test]", got)
	}
	if mem.Flushes() != 1 {
		t.Errorf("Inner handler flushed %d times, want 1", mem.Flushes())
	}
}

func TestOverflowPolicy_DropNewest(t *testing.T) {
	inner := newGatedHandler()
	h := NewAsyncHandler(inner, AsyncConfig{
		BufferSize: 2,
		OverflowPolicy: map[core.Level]OverflowPolicy{
			core.InfoLevel: DropNewest,
		},
	})
	defer h.Close()

	for i := 0; i < 10; i++ {
		_ = h.Handle(newEntry(core.InfoLevel, "test"))
	}

	stats := h.Stats()
	if stats.DroppedTotal[core.InfoLevel] == 0 {
		t.Error("Expected some dropped logs with DropNewest policy")
	}
	inner.open()
}

func TestOverflowPolicy_DropOldest(t *testing.T) {
	inner := newGatedHandler()
	h := NewAsyncHandler(inner, AsyncConfig{
		BufferSize: 2,
		OverflowPolicy: map[core.Level]OverflowPolicy{
			core.WarnLevel: DropOldest,
		},
	})
	defer h.Close()

	for i := 0; i < 10; i++ {
		_ = h.Handle(newEntry(core.WarnLevel, "warn"))
	}

	if h.Stats().DroppedTotal[core.WarnLevel] == 0 {
		t.Error("Expected some dropped logs with DropOldest policy")
	}
	inner.open()
}

func TestOverflowPolicy_Block(t *testing.T) {
	inner := newGatedHandler()
	h := NewAsyncHandler(inner, AsyncConfig{
		BufferSize:   1,
		BlockTimeout: 20 * time.Millisecond,
		OverflowPolicy: map[core.Level]OverflowPolicy{
			core.ErrorLevel: Block,
		},
	})

	// Release the destination shortly after the queue fills so blocked
	// callers can complete their synchronous fallback writes.
	time.AfterFunc(100*time.Millisecond, inner.open)

	for i := 0; i < 5; i++ {
		_ = h.Handle(newEntry(core.ErrorLevel, "error"))
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	stats := h.Stats()
	if stats.BlockedTotal == 0 {
		t.Error("Expected blocked writes with Block policy")
	}
	if stats.DroppedTotal[core.ErrorLevel] != 0 {
		t.Errorf("Block policy dropped %d entries", stats.DroppedTotal[core.ErrorLevel])
	}
	if got := len(inner.Messages()); got != 5 {
		t.Errorf("Delivered %d entries, want 5", got)
	}
}

func TestAsyncHandler_CloseRacingHandle(t *testing.T) {
	for round := 0; round < 50; round++ {
		mem := NewMemoryHandler(0)
		h := NewAsyncHandler(mem, AsyncConfig{BufferSize: 1024})

		var accepted atomic.Int64
		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					if h.Handle(newEntry(core.InfoLevel, "racing")) == nil {
						accepted.Add(1)
					}
				}
			}()
		}
		_ = h.Close()
		wg.Wait()

		// Every entry Handle accepted was written before Close returned.
		if got, want := int64(len(mem.Messages())), accepted.Load(); got != want {
			t.Fatalf("round %d: delivered %d entries, accepted %d", round, got, want)
		}
	}
}

func TestAsyncHandler_EnabledForwards(t *testing.T) {
	h := NewAsyncHandler(NewLevelFilter(NewMemoryHandler(0), core.ErrorLevel), AsyncConfig{})
	defer h.Close()
	if h.Enabled(core.WarnLevel) || !h.Enabled(core.ErrorLevel) {
		t.Errorf("Enabled(warn)=%v Enabled(error)=%v, want false/true", h.Enabled(core.WarnLevel), h.Enabled(core.ErrorLevel))
	}
	if !Enabled(NewMemoryHandler(0), core.DebugLevel) {
		t.Error("Enabled() on an ungated handler = false")
	}
}

func TestAsyncHandler_CloseIdempotent(t *testing.T) {
	mem := NewMemoryHandler(0)
	h := NewAsyncHandler(mem, AsyncConfig{})

	for i := 0; i < 3; i++ {
		if err := h.Close(); err != nil {
			t.Errorf("Close #%d failed: %v", i+1, err)
		}
	}
	if mem.Closes() != 1 {
		t.Errorf("Inner handler closed %d times, want 1", mem.Closes())
	}
	if err := h.Handle(newEntry(core.InfoLevel, "late")); err != ErrClosed {
		t.Errorf("Handle after Close = %v, want ErrClosed", err)
	}
	if err := h.Flush(); err != nil {
		t.Errorf("Flush after Close = %v", err)
	}
}

func TestAsyncHandler_DrainTimeout(t *testing.T) {
	inner := newGatedHandler()
	h := NewAsyncHandler(inner, AsyncConfig{
		BufferSize:   1000,
		DrainTimeout: 50 * time.Millisecond,
	})

	for i := 0; i < 100; i++ {
		_ = h.Handle(newEntry(core.InfoLevel, "test"))
	}

	time.AfterFunc(10*time.Millisecond, inner.open)
	start := time.Now()
	_ = h.Close()
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Close took too long: %v", elapsed)
	}
}

func TestStats_Telemetry(t *testing.T) {
	h := NewStreamHandler(StreamConfig{Writer: &strings.Builder{}})
	defer h.Close()

	for i := 0; i < 5; i++ {
		_ = h.Handle(newEntry(core.InfoLevel, "info"))
	}

	if got := h.Stats().ProcessedTotal; got != 5 {
		t.Errorf("Expected 5 processed logs, got %d", got)
	}
}

func TestParseOverflowPolicy(t *testing.T) {
	for _, p := range []OverflowPolicy{DropNewest, DropOldest, Block} {
		got, err := ParseOverflowPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseOverflowPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if got, err := ParseOverflowPolicy(""); err != nil || got != DropNewest {
		t.Errorf("ParseOverflowPolicy(\"\") = %v, %v, want DropNewest", got, err)
	}
	if _, err := ParseOverflowPolicy("spill"); err == nil {
		t.Error("ParseOverflowPolicy(spill) succeeded")
	}
}

func TestDefaultLevelPolicy(t *testing.T) {
	p := DefaultLevelPolicy()
	if p[core.InfoLevel] != DropNewest || p[core.WarnLevel] != DropNewest {
		t.Errorf("info/warn policy = %v/%v, want DropNewest", p[core.InfoLevel], p[core.WarnLevel])
	}
	for _, l := range []core.Level{core.ErrorLevel, core.FatalLevel, core.PanicLevel} {
		if p[l] != Block {
			t.Errorf("%v policy = %v, want Block", l, p[l])
		}
	}
}

func TestStats_SnapshotAndReset(t *testing.T) {
	s := NewStats()
	s.IncrementDropped(core.DebugLevel)
	s.IncrementDropped(core.PanicLevel)
	s.IncrementDropped(core.PanicLevel)
	s.IncrementBlocked()
	s.IncrementProcessed()

	snap := s.GetSnapshot()
	if snap.DroppedTotal[core.PanicLevel] != 2 || snap.Dropped() != 3 {
		t.Errorf("DroppedTotal = %v, want 2 panic and 3 overall", snap.DroppedTotal)
	}
	if _, ok := snap.DroppedTotal[core.InfoLevel]; ok {
		t.Error("Snapshot carries a level that dropped nothing")
	}
	if snap.BlockedTotal != 1 || snap.ProcessedTotal != 1 {
		t.Errorf("blocked/processed = %d/%d, want 1/1", snap.BlockedTotal, snap.ProcessedTotal)
	}

	s.Reset()
	if snap := s.GetSnapshot(); snap.Dropped() != 0 || snap.BlockedTotal != 0 || snap.ProcessedTotal != 0 {
		t.Errorf("after Reset = %+v", snap)
	}
}

func TestFileHandler_MaxBackups(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	for i := 0; i < 20; i++ {
		if err := h.Handle(newEntry(core.InfoLevel, "This is a test message that will trigger rotation")); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
		// Rotation is decided on buffered size; flush so each file is written.
		_ = h.Flush()
	}

	backups, _ := filepath.Glob(filename + ".*")
	if len(backups) > 2 {
		t.Errorf("Expected at most 2 backups, found %d", len(backups))
	}
	if len(backups) == 0 {
		t.Error("Expected rotation to produce backups")
	}
}

func TestFileHandler_RotateInterval(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename:       filename,
		RotateInterval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	_ = h.Handle(newEntry(core.InfoLevel, "first"))
	time.Sleep(80 * time.Millisecond)
	_ = h.Handle(newEntry(core.InfoLevel, "second"))

	backups, _ := filepath.Glob(filename + ".*")
	if len(backups) != 1 {
		t.Fatalf("Expected 1 rotated file, found %d", len(backups))
	}
	data, _ := os.ReadFile(backups[0])
	if !strings.Contains(string(data), "first") {
		t.Errorf("Rotated file missing first entry: %q", data)
	}
}

func TestFileHandler_SyncOnClose(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nested", "test.log")

	h, err := NewFileHandler(FileConfig{Filename: filename})
	if err != nil {
		t.Fatal(err)
	}

	_ = h.Handle(newEntry(core.InfoLevel, "test"))
	if err := h.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "test") {
		t.Errorf("Expected entry in file, got: %q", data)
	}
	if err := h.Handle(newEntry(core.InfoLevel, "late")); err != ErrClosed {
		t.Errorf("Handle after Close = %v, want ErrClosed", err)
	}
}

func TestNewFileHandler_RequiresFilename(t *testing.T) {
	if _, err := NewFileHandler(FileConfig{}); !errors.Is(err, ErrNoFilename) {
		t.Errorf("NewFileHandler(empty) error = %v, want ErrNoFilename", err)
	}
}

func TestFileHandler_RotationRecoversFromCloseError(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "tenant.log")
	h, err := NewFileHandler(FileConfig{Filename: filename, MaxSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	if err := h.Handle(newEntry(core.InfoLevel, "first")); err != nil {
		t.Fatalf("Handle(first) error = %v", err)
	}
	if err := h.Flush(); err != nil {
		t.Fatal(err)
	}
	// Closing the descriptor underneath makes the rotation's sync and close fail.
	_ = h.file.Close()

	if err := h.Handle(newEntry(core.InfoLevel, "second")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Handle(second) error = %v, want os.ErrClosed", err)
	}
	if err := h.Flush(); err != nil {
		t.Fatalf("Flush() after failed rotation = %v", err)
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "second") {
		t.Errorf("Reopened file = %q, want the second entry", data)
	}

	if err := h.Handle(newEntry(core.InfoLevel, "third")); err != nil {
		t.Errorf("Handle(third) error = %v, want recovery", err)
	}
}

func TestFileHandler_PruneKeepsUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	// Glob metacharacters in the name must not affect backup matching.
	filename := filepath.Join(dir, "tenant[a].log")
	unrelated := filename + ".keep"
	if err := os.WriteFile(unrelated, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := NewFileHandler(FileConfig{Filename: filename, MaxSize: 10, MaxBackups: 1})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	for i := 0; i < 5; i++ {
		if err := h.Handle(newEntry(core.InfoLevel, "rotate me please")); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var backups int
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "tenant[a].log.2") {
			backups++
		}
	}
	if backups != 1 {
		t.Errorf("Found %d backups, want 1", backups)
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Errorf("Unrelated file removed: %v", err)
	}
}

func BenchmarkAsyncHandler_DropNewest(b *testing.B) {
	h := NewAsyncHandler(NewStreamHandler(StreamConfig{Writer: discard{}}), AsyncConfig{BufferSize: 100})
	defer h.Close()

	entry := newEntry(core.InfoLevel, "benchmark")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Handle(entry)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
