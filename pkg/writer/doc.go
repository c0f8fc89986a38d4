/*
Package writer implements the Columnar Writer (C2): encodes a
RowBatch into a self-describing Parquet file named parquet-<uuid>.

Grounded on original_source/src/ingress/writer.rs's File{name,
content} shape and naming scheme, reimplemented with
xitongsys/parquet-go's JSON writer over an in-memory buffer.File
instead of Arrow's in-memory cursor, since this module has no Arrow
dependency to round-trip through.
*/
package writer
