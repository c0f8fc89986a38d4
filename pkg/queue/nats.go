package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSQueue is a Queue backed by NATS JetStream: a durable pull
// consumer gives at-least-once delivery and redelivery-after-ack-wait
// semantics, the Go-ecosystem analogue of the SQS visibility timeout
// the prototype's PubSub trait was built around.
type NATSQueue struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	stream  jetstream.Stream
	cons    jetstream.Consumer
	subject string

	mu       sync.Mutex
	inflight map[string]jetstream.Msg
}

// NATSConfig configures a NATSQueue.
type NATSConfig struct {
	URL         string
	StreamName  string
	Subject     string
	ConsumerName string
	AckWait     time.Duration
	MaxDeliver  int
}

// NewNATSQueue connects to URL and ensures StreamName/Subject and a
// durable pull consumer exist, creating them if this is the first
// node to start.
func NewNATSQueue(ctx context.Context, cfg NATSConfig) (*NATSQueue, error) {
	nc, err := nats.Connect(cfg.URL, nats.Name("siloflow"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, types.Wrap(types.KindTransientIO, "connect to nats", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, types.Wrap(types.KindTransientIO, "create jetstream context", err)
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.StreamName,
		Subjects: []string{cfg.Subject},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, types.Wrap(types.KindTransientIO, "create jetstream stream", err)
	}

	cons, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       cfg.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		MaxDeliver:    cfg.MaxDeliver,
		FilterSubject: cfg.Subject,
	})
	if err != nil {
		nc.Close()
		return nil, types.Wrap(types.KindTransientIO, "create jetstream consumer", err)
	}

	return &NATSQueue{
		nc:       nc,
		js:       js,
		stream:   stream,
		cons:     cons,
		subject:  cfg.Subject,
		inflight: make(map[string]jetstream.Msg),
	}, nil
}

func (q *NATSQueue) Enqueue(ctx context.Context, task types.IngressTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return types.Wrap(types.KindInternal, "marshal ingress task", err)
	}
	if _, err := q.js.Publish(ctx, q.subject, data); err != nil {
		return types.Wrap(types.KindTransientIO, "publish ingress task", err)
	}
	return nil
}

func (q *NATSQueue) Receive(ctx context.Context, max int, wait time.Duration) ([]Message, error) {
	batch, err := q.cons.Fetch(max, jetstream.FetchMaxWait(wait))
	if err != nil {
		return nil, types.Wrap(types.KindTransientIO, "fetch from jetstream", err)
	}

	var out []Message
	for msg := range batch.Messages() {
		var task types.IngressTask
		if err := json.Unmarshal(msg.Data(), &task); err != nil {
			_ = msg.Term()
			continue
		}

		meta, err := msg.Metadata()
		redeliveries := 0
		if err == nil {
			redeliveries = int(meta.NumDelivered) - 1
		}
		if redeliveries > 0 {
			metrics.QueueRedeliveries.Inc()
		}

		handle := uuid.NewString()
		out = append(out, Message{
			Task:            task,
			Handle:          handle,
			RedeliveryCount: redeliveries,
		})

		q.mu.Lock()
		q.inflight[handle] = msg
		q.mu.Unlock()
	}
	if err := batch.Error(); err != nil {
		return out, types.Wrap(types.KindTransientIO, "jetstream batch error", err)
	}
	return out, nil
}

func (q *NATSQueue) take(handle string) (jetstream.Msg, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	jm, ok := q.inflight[handle]
	if ok {
		delete(q.inflight, handle)
	}
	return jm, ok
}

func (q *NATSQueue) Ack(_ context.Context, msg Message) error {
	jm, ok := q.take(msg.Handle)
	if !ok {
		return nil
	}
	return jm.Ack()
}

func (q *NATSQueue) Nack(_ context.Context, msg Message) error {
	jm, ok := q.take(msg.Handle)
	if !ok {
		return nil
	}
	return jm.Nak()
}

// IsConnected reports whether the underlying NATS connection is up,
// for use in readiness checks.
func (q *NATSQueue) IsConnected() bool {
	return q.nc.IsConnected()
}

func (q *NATSQueue) Close() error {
	q.nc.Close()
	return nil
}
