// Package formatter defines how a destination handler serializes log
// entries into bytes.
//
// Three formats are built in: human-readable text, JSON, and logfmt. Each
// implements Formatter, WriterFormatter and BufferFormatter, and New picks
// one by name as it appears in a tenants file. Rendering goes through a
// pooled bytes.Buffer with Append-style helpers (time.AppendFormat,
// strconv.AppendInt), so a steady stream of entries does not allocate per
// call beyond the returned slice.
//
// Config.Prefix labels every line with a static string. Destinations
// configured per tenant use it to tag output with the tenant id, since the
// routing layer never modifies the entries it forwards. In JSON and logfmt
// the label is written under the "tenant" key, and a field that reuses one
// of the formatter's own keys is renamed to "fields.<key>".
package formatter
