// Package core defines the shared types used across tenantlog.
//
// Entry is the log record that travels from the host logging layer,
// through the delegation sink, to whichever handler the active tenant
// configured. Level orders severities and Field carries structured
// key-value pairs.
//
// Entry objects are pooled via sync.Pool. Callers get an Entry with
// GetEntry and return it with PutEntry once the handler has consumed it.
// A handler that keeps an entry beyond Handle must store a Clone.
//
// Field encodes values into fixed-size numeric fields (Int64, Float64)
// wherever possible so that common types like int, bool, and time.Time
// never escape to the heap. AnyField picks the compact representation
// for loosely typed values coming from other logging libraries.
package core
