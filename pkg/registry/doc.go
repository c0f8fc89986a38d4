/*
Package registry implements the Schema Registry (C3): a small
raft-replicated key-value table mapping schema id to types.Schema.

Registry wraps pkg/storage's BoltStore with a hashicorp/raft FSM so
every node's local copy converges through the same committed log,
following the teacher's manager/fsm.go Command-envelope pattern and
manager.go's raft bootstrap/join setup (same tuned timeouts, same
TCP transport and raft-boltdb log/stable stores). Unlike the teacher's
multi-entity FSM, this one supports exactly one mutation, put_schema,
and enforces put-new-only semantics that the prototype this pipeline
replaces left as a TODO.
*/
package registry
