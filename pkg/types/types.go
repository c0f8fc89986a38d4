package types

import "time"

// ColumnType is the logical type of a Schema column.
type ColumnType string

const (
	ColumnTypeString      ColumnType = "string"
	ColumnTypeInt64       ColumnType = "int64"
	ColumnTypeTimestampNS ColumnType = "timestamp_ns"
)

// Column is one output field of a Schema. Name must match a named capture
// group in the Schema's regex.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is a regex plus a typed column layout, identified by an opaque
// string id. Every Column.Name must exist as a named capture group in
// Regex; capture-group order is irrelevant, Columns order is the output
// order. Inserted once by the Schema Registry; overwrites fail.
type Schema struct {
	ID      string
	Regex   string
	Columns []Column
}

// RawBuffer is a contiguous, bounded-size byte sequence read from a
// tailed file in one Agent tick. It carries no structure beyond "these
// are the bytes read this tick."
type RawBuffer struct {
	Bytes []byte
}

// PresignedURL is an opaque, single-use upload URL issued by the Control
// Service. Bucket and Key are the object it targets; ExpiresAt is
// advisory (enforced by the Blob Store, not by this struct).
type PresignedURL struct {
	URL       string
	Bucket    string
	Key       string
	ExpiresAt time.Time
}

// IngressTask is the queued unit of work: identifies one source object
// to ingest, optionally naming the schema to parse it against. Its JSON
// form is the Task Queue wire format: {"bucket","key","schema_id"}.
type IngressTask struct {
	Bucket   string `json:"bucket"`
	Key      string `json:"key"`
	SchemaID string `json:"schema_id,omitempty"`
}

// DefaultSchemaID is used for tasks that omit schema_id, matching the
// reference implementation's hardcoded single-line schema.
const DefaultSchemaID = "default"

// ResolvedSchemaID returns t.SchemaID, falling back to DefaultSchemaID
// when the task carries none.
func (t IngressTask) ResolvedSchemaID() string {
	if t.SchemaID == "" {
		return DefaultSchemaID
	}
	return t.SchemaID
}

// Row is one decoded event: column name to string value, with a nil
// entry for a column that had no capture in that event.
type Row map[string]*string

// RowBatch is an in-memory, columnar set of rows conforming to a Schema.
// Columns holds one slice per Schema column, keyed by column name
// (Schema.Columns gives the output order); every slice has the same length. A nil entry means the capture was
// absent for that event.
type RowBatch struct {
	Schema  Schema
	Columns map[string][]*string
}

// NewRowBatch allocates an empty RowBatch with one column slice per
// schema column.
func NewRowBatch(schema Schema) *RowBatch {
	cols := make(map[string][]*string, len(schema.Columns))
	for _, c := range schema.Columns {
		cols[c.Name] = nil
	}
	return &RowBatch{Schema: schema, Columns: cols}
}

// Len returns the number of rows, or 0 for an empty batch.
func (b *RowBatch) Len() int {
	for _, c := range schemaColumnNames(b.Schema) {
		return len(b.Columns[c])
	}
	return 0
}

// AppendRow appends one value per schema column, in schema order. A nil
// entry represents an absent capture for that event.
func (b *RowBatch) AppendRow(values map[string]*string) {
	for _, c := range b.Schema.Columns {
		b.Columns[c.Name] = append(b.Columns[c.Name], values[c.Name])
	}
}

func schemaColumnNames(s Schema) []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// OutputFile is a freshly generated name (prefix parquet-) paired with
// opaque encoded bytes, as produced by the Columnar Writer.
type OutputFile struct {
	Name    string
	Content []byte
}
