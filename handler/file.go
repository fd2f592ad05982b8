package handler

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/philipp01105/tenantlog/core"
	"github.com/philipp01105/tenantlog/formatter"
)

// ErrNoFilename is returned by NewFileHandler for an empty Filename.
var ErrNoFilename = errors.New("handler: file destination needs a filename")

// backupLayout is appended to the file name of a rotated file. It sorts
// chronologically as a string.
const backupLayout = "20060102T150405.000000000"

// FileConfig configures a FileHandler.
type FileConfig struct {
	Filename string
	// Formatter defaults to a TextFormatter.
	Formatter formatter.Formatter
	// MaxSize rotates the file before a write would take it past this many
	// bytes. Zero disables size rotation.
	MaxSize int64
	// MaxBackups caps the rotated files kept next to Filename. Zero keeps
	// all of them.
	MaxBackups int
	// RotateInterval rotates the file once it has been open this long.
	RotateInterval time.Duration
}

// FileHandler appends formatted entries to a buffered file, one per tenant
// destination. Output reaches the disk on Flush, on rotation and on Close.
type FileHandler struct {
	cfg   FileConfig
	stats *Stats

	mu       sync.Mutex
	file     *os.File
	w        *bufio.Writer
	scratch  bytes.Buffer
	size     int64
	openedAt time.Time
	closed   bool
}

// NewFileHandler creates Filename and its directory if needed and appends
// to it.
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	if cfg.Filename == "" {
		return nil, ErrNoFilename
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0o755); err != nil {
		return nil, err
	}

	h := &FileHandler{cfg: cfg, stats: NewStats()}
	if err := h.open(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *FileHandler) open() error {
	f, err := os.OpenFile(h.cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	h.file = f
	h.size = info.Size()
	h.openedAt = time.Now()
	if h.w == nil {
		h.w = bufio.NewWriterSize(f, 4096)
	} else {
		h.w.Reset(f)
	}
	return nil
}

func (h *FileHandler) Handle(entry *core.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.file == nil {
		// A previous rotation could not reopen the file.
		if err := h.open(); err != nil {
			return err
		}
	}

	h.scratch.Reset()
	if bf, ok := h.cfg.Formatter.(formatter.BufferFormatter); ok {
		bf.FormatEntry(entry, &h.scratch)
	} else {
		data, err := h.cfg.Formatter.Format(entry)
		if err != nil {
			return err
		}
		h.scratch.Write(data)
	}

	var rotateErr error
	if h.shouldRotate(int64(h.scratch.Len())) {
		rotateErr = h.rotate()
		if h.file == nil {
			return rotateErr
		}
	}

	n, err := h.w.Write(h.scratch.Bytes())
	h.size += int64(n)
	if err != nil {
		return errors.Join(rotateErr, err)
	}
	h.stats.IncrementProcessed()
	return rotateErr
}

func (h *FileHandler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.file == nil {
		return nil
	}
	return h.w.Flush()
}

// Close flushes, syncs and closes the file. Later calls return nil.
func (h *FileHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.closeFile()
}

func (h *FileHandler) Stats() Snapshot {
	return h.stats.GetSnapshot()
}

func (h *FileHandler) closeFile() error {
	if h.file == nil {
		return nil
	}
	err := h.w.Flush()
	if err == nil {
		err = h.file.Sync()
	}
	if cerr := h.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// shouldRotate never rotates an empty file, so an entry larger than MaxSize
// is still written once.
func (h *FileHandler) shouldRotate(next int64) bool {
	if h.cfg.MaxSize > 0 && h.size > 0 && h.size+next > h.cfg.MaxSize {
		return true
	}
	return h.cfg.RotateInterval > 0 && time.Since(h.openedAt) >= h.cfg.RotateInterval
}

// rotate moves the current file aside and opens a fresh one. It reopens even
// when closing the old file failed; h.file is nil only if the reopen failed.
func (h *FileHandler) rotate() error {
	closeErr := h.closeFile()
	h.file = nil
	renameErr := os.Rename(h.cfg.Filename, h.backupName(time.Now()))
	if err := h.open(); err != nil {
		return errors.Join(closeErr, renameErr, fmt.Errorf("reopen %s: %w", h.cfg.Filename, err))
	}
	if closeErr != nil || renameErr != nil {
		return errors.Join(closeErr, renameErr)
	}
	if h.cfg.MaxBackups > 0 {
		return h.pruneBackups()
	}
	return nil
}

// backupName returns an unused name for a file rotated at t.
func (h *FileHandler) backupName(t time.Time) string {
	name := h.cfg.Filename + "." + t.Format(backupLayout)
	for i := 1; ; i++ {
		if _, err := os.Lstat(name); errors.Is(err, os.ErrNotExist) {
			return name
		}
		name = fmt.Sprintf("%s.%s-%d", h.cfg.Filename, t.Format(backupLayout), i)
	}
}

// pruneBackups removes the oldest rotated files beyond MaxBackups. Files
// next to Filename that do not carry a rotation timestamp are left alone.
func (h *FileHandler) pruneBackups() error {
	dir, base := filepath.Split(h.cfg.Filename)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}

	var backups []string
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), base+".")
		if !ok || e.IsDir() {
			continue
		}
		stamp, _, _ := strings.Cut(suffix, "-")
		if _, err := time.Parse(backupLayout, stamp); err != nil {
			continue
		}
		backups = append(backups, e.Name())
	}
	if len(backups) <= h.cfg.MaxBackups {
		return nil
	}
	slices.Sort(backups)
	var errs []error
	for _, name := range backups[:len(backups)-h.cfg.MaxBackups] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("prune backups: %w", errors.Join(errs...))
	}
	return nil
}
