package formatter

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/philipp01105/tenantlog/core"
)

// Keys written by JSONFormatter itself. A field using one of them is
// emitted as "fields.<key>" so every object has unique keys.
const (
	TimeKey    = "time"
	LevelKey   = "level"
	TenantKey  = "tenant"
	MessageKey = "message"
	CallerKey  = "caller"
)

// JSONFormatter renders one JSON object per entry, newline terminated.
type JSONFormatter struct {
	Config
}

// NewJSONFormatter defaults the timestamp layout to RFC 3339 with nanoseconds.
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

func (f *JSONFormatter) Format(entry *core.Entry) ([]byte, error) {
	return render(f.FormatEntry, entry), nil
}

func (f *JSONFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	return renderTo(f.FormatEntry, entry, w)
}

// FormatEntry implements BufferFormatter.
func (f *JSONFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	enc := jsonObject{buf: buf}
	enc.open()

	enc.key(TimeKey)
	buf.WriteByte('"')
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte('"')

	enc.key(LevelKey)
	enc.str(entry.Level.String())

	if f.Prefix != "" {
		enc.key(TenantKey)
		enc.str(f.Prefix)
	}

	enc.key(MessageKey)
	enc.str(entry.Message)

	if f.IncludeCaller && entry.Caller.Defined {
		enc.key(CallerKey)
		inner := jsonObject{buf: buf}
		inner.open()
		inner.key("file")
		inner.str(entry.Caller.ShortFile)
		inner.key("line")
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Caller.Line), 10))
		if entry.Caller.Function != "" {
			inner.key("function")
			inner.str(entry.Caller.Function)
		}
		inner.close()
	}

	for _, field := range entry.Fields {
		if reservedKey(field.Key) {
			enc.key("fields." + field.Key)
		} else {
			enc.key(field.Key)
		}
		enc.value(field)
	}

	enc.close()
	buf.WriteByte('\n')
}

func reservedKey(k string) bool {
	switch k {
	case TimeKey, LevelKey, TenantKey, MessageKey, CallerKey:
		return true
	}
	return false
}

// jsonObject appends one object's members, tracking the separator.
type jsonObject struct {
	buf  *bytes.Buffer
	more bool
}

func (o *jsonObject) open()  { o.buf.WriteByte('{') }
func (o *jsonObject) close() { o.buf.WriteByte('}') }

func (o *jsonObject) key(k string) {
	if o.more {
		o.buf.WriteByte(',')
	}
	o.more = true
	o.str(k)
	o.buf.WriteByte(':')
}

func (o *jsonObject) str(s string) {
	o.buf.WriteByte('"')
	appendJSONString(o.buf, s)
	o.buf.WriteByte('"')
}

func (o *jsonObject) value(field core.Field) {
	buf := o.buf
	switch field.Type {
	case core.IntType, core.Int64Type, core.DurationType:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Float64Type:
		// JSON has no NaN or infinities.
		if math.IsNaN(field.Float64) || math.IsInf(field.Float64, 0) {
			o.str(strconv.FormatFloat(field.Float64, 'f', -1, 64))
			return
		}
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), field.Float64, 'f', -1, 64))
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	case core.TimeType:
		buf.WriteByte('"')
		buf.Write(time.Unix(0, field.Int64).AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case core.StringType, core.ErrorType:
		o.str(field.Str)
	default:
		o.str(field.StringValue())
	}
}

const hexDigits = "0123456789abcdef"

// appendJSONString escapes s without the surrounding quotes.
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		buf.WriteString(s[start:i])
		switch c {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0x0f])
		}
		start = i + 1
	}
	buf.WriteString(s[start:])
}
