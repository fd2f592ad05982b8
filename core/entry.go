package core

import (
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Entry is a single log record. It is the value every handler receives;
// routing layers pass the same pointer through without touching it.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
	Fields  []Field
	Caller  CallerInfo
}

// CallerInfo locates the call site that produced an entry. Defined is false
// when the logger was built without caller reporting.
type CallerInfo struct {
	File      string
	ShortFile string
	Line      int
	Function  string
	Defined   bool
}

// Clone returns a copy that shares nothing mutable with e. Handlers that
// keep an entry after Handle returns must keep a clone: the caller recycles
// the original through PutEntry.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Fields = nil
	if len(e.Fields) > 0 {
		c.Fields = append(make([]Field, 0, len(e.Fields)), e.Fields...)
	}
	return &c
}

// Lookup returns the last field named key.
func (e *Entry) Lookup(key string) (Field, bool) {
	for i := len(e.Fields) - 1; i >= 0; i-- {
		if e.Fields[i].Key == key {
			return e.Fields[i], true
		}
	}
	return Field{}, false
}

const (
	pooledFields    = 8
	maxPooledFields = 64
)

var entryPool = sync.Pool{
	New: func() any {
		return &Entry{Level: InfoLevel, Fields: make([]Field, 0, pooledFields)}
	},
}

// GetEntry takes a reset entry stamped with the current time from the pool.
func GetEntry() *Entry {
	e := entryPool.Get().(*Entry)
	e.Time = time.Now()
	return e
}

// PutEntry resets e and returns it to the pool. e must not be used
// afterwards.
func PutEntry(e *Entry) {
	if e == nil {
		return
	}
	if cap(e.Fields) > maxPooledFields {
		// One oversized record should not pin a large slice in every
		// pooled entry.
		return
	}
	clear(e.Fields)
	*e = Entry{Fields: e.Fields[:0], Level: InfoLevel}
	entryPool.Put(e)
}

// GetCaller describes the frame skip levels above its caller.
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallerInfo{}
	}
	info := CallerInfo{
		File:      file,
		ShortFile: filepath.Base(file),
		Line:      line,
		Defined:   true,
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		info.Function = fn.Name()
	}
	return info
}
