package formatter

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-logfmt/logfmt"

	"github.com/philipp01105/tenantlog/core"
)

// Formatter serializes one entry, including the trailing newline.
type Formatter interface {
	Format(entry *core.Entry) ([]byte, error)
}

// WriterFormatter writes the serialized entry straight to w.
type WriterFormatter interface {
	FormatTo(entry *core.Entry, w io.Writer) error
}

// BufferFormatter appends the serialized entry to a caller-owned buffer.
// Handlers that batch writes use it to skip the intermediate slice.
type BufferFormatter interface {
	FormatEntry(entry *core.Entry, buf *bytes.Buffer)
}

// Config is shared by the built-in formatters.
type Config struct {
	IncludeCaller bool
	// TimestampFormat is a time layout; each formatter has its own default.
	TimestampFormat string
	// Prefix labels every line, usually with the id of the tenant that owns
	// the destination.
	Prefix string
}

// Names accepted by New.
const (
	Text   = "text"
	JSON   = "json"
	Logfmt = "logfmt"
)

// New returns the formatter for name. Empty and unknown names give Text.
func New(name string, cfg Config) Formatter {
	switch name {
	case JSON:
		return NewJSONFormatter(cfg)
	case Logfmt:
		return NewLogfmtFormatter(cfg)
	default:
		return NewTextFormatter(cfg)
	}
}

const maxPooledBuffer = 64 << 10

var bufferPool = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= maxPooledBuffer {
		bufferPool.Put(buf)
	}
}

func render(fill func(*core.Entry, *bytes.Buffer), entry *core.Entry) []byte {
	buf := getBuffer()
	defer putBuffer(buf)
	fill(entry, buf)
	return bytes.Clone(buf.Bytes())
}

func renderTo(fill func(*core.Entry, *bytes.Buffer), entry *core.Entry, w io.Writer) error {
	buf := getBuffer()
	defer putBuffer(buf)
	fill(entry, buf)
	_, err := w.Write(buf.Bytes())
	return err
}

// logfmtKey drops the runes logfmt cannot carry in a key: spaces and
// control characters, '=', '"' and invalid UTF-8. An empty result means the
// pair is skipped.
func logfmtKey(key string) string {
	return strings.Map(func(r rune) rune {
		if r <= ' ' || r == '=' || r == '"' || r == 0x7f || r == utf8.RuneError {
			return -1
		}
		return r
	}, key)
}

// pairWriter appends space-separated logfmt pairs to a buffer.
type pairWriter struct {
	buf *bytes.Buffer
	enc *logfmt.Encoder
	sep bool
}

// newPairWriter returns a writer whose first pair is preceded by a space
// only when sep is set.
func newPairWriter(buf *bytes.Buffer, sep bool) *pairWriter {
	return &pairWriter{buf: buf, enc: logfmt.NewEncoder(buf), sep: sep}
}

// pair writes key=value. Keys must already be valid logfmt keys; an empty
// key writes nothing.
func (p *pairWriter) pair(key, value string) {
	if key == "" {
		return
	}
	if p.sep {
		p.buf.WriteByte(' ')
	}
	p.sep = true
	p.enc.Reset()
	// Valid keys and string values only fail on write, and a bytes.Buffer
	// does not fail.
	_ = p.enc.EncodeKeyval(key, value)
}
