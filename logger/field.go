package logger

import (
	"fmt"
	"time"

	"github.com/philipp01105/tenantlog/core"
)

// Field constructors, building core.Field's compact typed form.

func String(key, val string) core.Field {
	return core.Field{Key: key, Type: core.StringType, Str: val}
}

func Int(key string, val int) core.Field {
	return core.Field{Key: key, Type: core.IntType, Int64: int64(val)}
}

func Int64(key string, val int64) core.Field {
	return core.Field{Key: key, Type: core.Int64Type, Int64: val}
}

func Float64(key string, val float64) core.Field {
	return core.Field{Key: key, Type: core.Float64Type, Float64: val}
}

func Bool(key string, val bool) core.Field {
	return core.AnyField(key, val)
}

func Time(key string, val time.Time) core.Field {
	return core.Field{Key: key, Type: core.TimeType, Int64: val.UnixNano()}
}

func Duration(key string, val time.Duration) core.Field {
	return core.Field{Key: key, Type: core.DurationType, Int64: int64(val)}
}

// Err is NamedErr under the conventional "error" key.
func Err(err error) core.Field {
	return NamedErr("error", err)
}

// NamedErr records err's message; a nil error yields an empty value.
func NamedErr(key string, err error) core.Field {
	f := core.Field{Key: key, Type: core.ErrorType}
	if err != nil {
		f.Str = err.Error()
	}
	return f
}

// Any picks the typed representation for common scalar types and keeps
// anything else as is.
func Any(key string, val interface{}) core.Field {
	return core.AnyField(key, val)
}

// Stringer calls val.String eagerly so the field stays valid after val
// changes.
func Stringer(key string, val fmt.Stringer) core.Field {
	if val == nil {
		return core.Field{Key: key, Type: core.StringType}
	}
	return String(key, val.String())
}

// Tenant is the conventional field naming a tenant. JSON and logfmt
// destinations with a prefix write their own tenant key, and rename this
// field to fields.tenant.
func Tenant(id string) core.Field {
	return String("tenant", id)
}
