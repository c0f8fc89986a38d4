// Package queue provides the Task Queue collaborator (§6): the
// at-least-once delivery channel carrying IngressTasks from the
// Control Service to Ingress Workers.
//
// Grounded on original_source/src/data/pub_sub.rs's PubSub trait
// (create_queue/send_messages/receive_messages/delete_messages),
// generalized from SQS's explicit receipt-handle delete-on-ack model
// to JetStream's pull-consumer ack model for the NATS implementation.
package queue

import (
	"context"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
)

// Message is one delivered IngressTask plus an opaque handle used to
// Ack or Nack it. RedeliveryCount is 0 on first delivery; the Ingress
// Worker logs >0 as a prior-attempt failure rather than a fresh task.
type Message struct {
	Task            types.IngressTask
	Handle          string
	RedeliveryCount int
}

// Queue is the at-least-once task channel between the Control Service
// and Ingress Workers. Receive blocks up to the caller-supplied
// timeout; Ack removes a message for good, Nack makes it immediately
// eligible for redelivery (used on transient failures so a retry
// doesn't wait out the full visibility timeout).
type Queue interface {
	Enqueue(ctx context.Context, task types.IngressTask) error
	Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error)
	Ack(ctx context.Context, msg Message) error
	Nack(ctx context.Context, msg Message) error
	Close() error
}
