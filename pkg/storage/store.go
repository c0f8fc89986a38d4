package storage

import "github.com/cuemby/siloflow/pkg/types"

// SchemaStore defines the durable key-value contract the Schema
// Registry's raft FSM applies its committed log entries against.
// PutSchema is an upsert: callers enforce put-new-only semantics above
// this interface (see pkg/registry), this layer just persists.
type SchemaStore interface {
	PutSchema(schema types.Schema) error
	GetSchema(id string) (types.Schema, error)
	HasSchema(id string) (bool, error)
	ListSchemas() ([]types.Schema, error)
	Close() error
}
