package formatter

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/philipp01105/tenantlog/core"
)

// LogfmtFormatter renders entries as logfmt with github.com/go-logfmt/logfmt,
// the encoder behind charmbracelet/log's logfmt output:
//
//	time=... level=info tenant=acme caller=file.go:12 msg="..." key=value
//
// Runes logfmt does not allow in keys are removed from field keys, and keys
// clashing with the leading ones get a "fields." prefix, as in JSONFormatter.
type LogfmtFormatter struct {
	Config
}

// NewLogfmtFormatter defaults the timestamp layout to RFC 3339 with
// nanoseconds.
func NewLogfmtFormatter(cfg Config) *LogfmtFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &LogfmtFormatter{Config: cfg}
}

func (f *LogfmtFormatter) Format(entry *core.Entry) ([]byte, error) {
	return render(f.FormatEntry, entry), nil
}

func (f *LogfmtFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	return renderTo(f.FormatEntry, entry, w)
}

// FormatEntry implements BufferFormatter.
func (f *LogfmtFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	pw := newPairWriter(buf, false)
	pw.pair(TimeKey, entry.Time.Format(f.TimestampFormat))
	pw.pair(LevelKey, strings.ToLower(entry.Level.String()))
	if f.Prefix != "" {
		pw.pair(TenantKey, f.Prefix)
	}
	if f.IncludeCaller && entry.Caller.Defined {
		pw.pair(CallerKey, entry.Caller.ShortFile+":"+strconv.Itoa(entry.Caller.Line))
	}
	pw.pair("msg", entry.Message)

	for _, field := range entry.Fields {
		key := logfmtKey(field.Key)
		if reservedKey(key) || key == "msg" {
			key = "fields." + key
		}
		pw.pair(key, field.StringValue())
	}
	buf.WriteByte('\n')
}
