package queue

import (
	"context"
	"sync"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
	"github.com/google/uuid"
)

type pendingMessage struct {
	msg       Message
	visibleAt time.Time
}

// MemoryQueue is an in-process Queue for tests and single-binary
// demos. It approximates JetStream's visibility-timeout redelivery:
// an unacked message reappears to Receive after visibilityTimeout.
type MemoryQueue struct {
	mu                 sync.Mutex
	visibilityTimeout  time.Duration
	pending            map[string]*pendingMessage
}

// NewMemoryQueue returns an empty queue with the given redelivery
// visibility timeout.
func NewMemoryQueue(visibilityTimeout time.Duration) *MemoryQueue {
	return &MemoryQueue{
		visibilityTimeout: visibilityTimeout,
		pending:           make(map[string]*pendingMessage),
	}
}

func (q *MemoryQueue) Enqueue(_ context.Context, task types.IngressTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	handle := uuid.NewString()
	q.pending[handle] = &pendingMessage{
		msg:       Message{Task: task, Handle: handle},
		visibleAt: time.Time{},
	}
	return nil
}

func (q *MemoryQueue) Receive(_ context.Context, max int, _ time.Duration) ([]Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	var out []Message
	for _, pm := range q.pending {
		if len(out) >= max {
			break
		}
		if pm.visibleAt.After(now) {
			continue
		}
		pm.visibleAt = now.Add(q.visibilityTimeout)
		out = append(out, pm.msg)
	}
	return out, nil
}

func (q *MemoryQueue) Ack(_ context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, msg.Handle)
	return nil
}

func (q *MemoryQueue) Nack(_ context.Context, msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	pm, ok := q.pending[msg.Handle]
	if !ok {
		return nil
	}
	pm.visibleAt = time.Time{}
	pm.msg.RedeliveryCount++
	return nil
}

func (q *MemoryQueue) Close() error { return nil }
