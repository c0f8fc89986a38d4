/*
Package types defines the core data structures used throughout siloflow.

This package holds the domain model shared by every other package: the
Schema a log line is parsed against, the buffers and files that move
through the pipeline, and the error taxonomy components report through.

# Core Types

Schema & Parsing:
  - Schema: regex + typed column layout, identified by an opaque id
  - Column: one output field, with a logical type and a nullability flag
  - RowBatch: an in-memory columnar set of rows conforming to a Schema

Transport:
  - RawBuffer: bytes read from a tailed file in one Agent tick
  - PresignedURL: a single-use, time-limited upload URL
  - IngressTask: the queued unit of work, `{bucket, key, schema_id}`
  - OutputFile: a generated name paired with encoded bytes

Errors:
  - Kind: the closed set of error kinds components convert into
  - Error: a Kind plus a wrapped cause and optional bucket/key/schema
    context, compatible with errors.Is and errors.As

# Integration Points

This package is imported by every other package in the module: pkg/parser
and pkg/writer operate on Schema/RowBatch/OutputFile, pkg/control and
pkg/ingressworker operate on PresignedURL/IngressTask, and pkg/blobstore,
pkg/queue and pkg/registry all report failures as *Error.
*/
package types
