package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/philipp01105/tenantlog/core"
)

// TextFormatter renders
//
//	<time> [LEVEL] (prefix) [file:line] message key=value ...
//
// Fields are written as logfmt pairs.
type TextFormatter struct {
	Config
}

// NewTextFormatter defaults the timestamp layout to RFC 3339.
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	return render(f.FormatEntry, entry), nil
}

func (f *TextFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	return renderTo(f.FormatEntry, entry, w)
}

var levelBrackets = [...]string{
	core.DebugLevel: " [DEBUG] ",
	core.InfoLevel:  " [INFO] ",
	core.WarnLevel:  " [WARN] ",
	core.ErrorLevel: " [ERROR] ",
	core.FatalLevel: " [FATAL] ",
	core.PanicLevel: " [PANIC] ",
}

// FormatEntry implements BufferFormatter.
func (f *TextFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	if entry.Level >= 0 && int(entry.Level) < len(levelBrackets) {
		buf.WriteString(levelBrackets[entry.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	if f.Prefix != "" {
		buf.WriteByte('(')
		buf.WriteString(f.Prefix)
		buf.WriteString(") ")
	}

	if f.IncludeCaller && entry.Caller.Defined {
		buf.WriteByte('[')
		buf.WriteString(entry.Caller.ShortFile)
		buf.WriteByte(':')
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Caller.Line), 10))
		buf.WriteString("] ")
	}

	buf.WriteString(entry.Message)

	pw := newPairWriter(buf, true)
	for _, field := range entry.Fields {
		pw.pair(logfmtKey(field.Key), field.StringValue())
	}
	buf.WriteByte('\n')
}
