/*
Package storage provides BoltDB-backed persistence for the Schema
Registry's durable schema table.

BoltStore implements SchemaStore: one bucket, JSON-encoded values keyed
by schema id, ACID transactions courtesy of BoltDB. It is deliberately
the only table in this store — the rest of the pipeline's state (queue
visibility, blob bytes) lives in its own external collaborator, not
here. pkg/registry layers put-new-only semantics and raft replication
on top of this package; BoltStore itself is a plain upsert-capable KV
table.
*/
package storage
