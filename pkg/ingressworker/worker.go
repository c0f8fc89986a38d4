// Package ingressworker implements the Ingress Worker Loop (C8):
// poll the Task Queue, and for each task fetch the source object,
// resolve its schema, parse, write, store the result, delete the
// source, and ack.
//
// Grounded on original_source/src/ingress/server.rs's IngressService
// shape (parser+writer+bucket+queue composed into one receive loop —
// its receive_message/upload_file/delete_message are todo!() stubs;
// this is where that behavior is actually built) and
// pkg/worker/worker.go's ticker-driven loop structure.
package ingressworker

import (
	"context"
	"time"

	"github.com/cuemby/siloflow/pkg/blobstore"
	"github.com/cuemby/siloflow/pkg/log"
	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/parser"
	"github.com/cuemby/siloflow/pkg/queue"
	"github.com/cuemby/siloflow/pkg/registry"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/cuemby/siloflow/pkg/writer"
)

// Config configures a Worker.
type Config struct {
	BatchSize         int
	PollWait          time.Duration
	DestinationBucket string
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.PollWait <= 0 {
		c.PollWait = 100 * time.Millisecond
	}
	return c
}

// Worker drains the Task Queue and turns each IngressTask into a
// Parquet OutputFile in the destination bucket, per spec.md §4.8.
type Worker struct {
	cfg      Config
	q        queue.Queue
	blobs    blobstore.BlobStore
	registry *registry.Registry
	w        *writer.Writer
	parsers  map[string]*parser.Parser

	stopCh chan struct{}
}

// New assembles a Worker from its collaborators. parsers is an
// in-process cache, lazily populated on first use of each schema id.
func New(cfg Config, q queue.Queue, blobs blobstore.BlobStore, reg *registry.Registry) *Worker {
	return &Worker{
		cfg:      cfg.withDefaults(),
		q:        q,
		blobs:    blobs,
		registry: reg,
		w:        writer.New(),
		parsers:  make(map[string]*parser.Parser),
		stopCh:   make(chan struct{}),
	}
}

// Run polls on a ticker until Stop is called or ctx is done, the
// teacher's ticker+stopCh loop shape narrowed to a single poll.
func (wk *Worker) Run(ctx context.Context, pollInterval time.Duration) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := wk.Poll(ctx); err != nil {
				log.Errorf("ingress worker poll failed", err)
			}
		case <-ctx.Done():
			return
		case <-wk.stopCh:
			return
		}
	}
}

// Stop ends a running Run loop.
func (wk *Worker) Stop() {
	close(wk.stopCh)
}

// Poll performs one receive-parse-write-delete-ack cycle over up to
// cfg.BatchSize messages, per spec.md §4.8. Messages that fail at a
// retryable step are left un-acked for queue redelivery; messages that
// fail at a terminal step (schema miss, malformed body) are acked so
// they are not retried forever.
func (wk *Worker) Poll(ctx context.Context) error {
	msgs, err := wk.q.Receive(ctx, wk.cfg.BatchSize, wk.cfg.PollWait)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		wk.processOne(ctx, msg)
	}
	return nil
}

// processOne handles a single delivered message, acking or nacking it
// according to the fatalness rules of spec.md §4.8/§7.
func (wk *Worker) processOne(ctx context.Context, msg queue.Message) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.TaskDuration)

	if msg.RedeliveryCount > 0 {
		log.Debug("processing redelivered task")
	}

	if err := wk.processTask(ctx, msg.Task); err != nil {
		wk.finishFailed(ctx, msg, err)
		return
	}

	if err := wk.q.Ack(ctx, msg); err != nil {
		log.Errorf("failed to ack successfully processed task", err)
		return
	}
	metrics.TasksOK.Inc()
}

// finishFailed routes a task error to ack-and-log (terminal) or
// nack (retryable), incrementing tasks_failed{reason} either way.
func (wk *Worker) finishFailed(ctx context.Context, msg queue.Message, err error) {
	reason := failureReason(err)
	metrics.TasksFailed.WithLabelValues(reason).Inc()

	if types.Retriable(err) {
		log.Errorf("ingress task failed with a retriable error, leaving for redelivery", err)
		if nackErr := wk.q.Nack(ctx, msg); nackErr != nil {
			log.Errorf("failed to nack task", nackErr)
		}
		return
	}

	log.Errorf("ingress task failed terminally, acking to stop redelivery", err)
	if ackErr := wk.q.Ack(ctx, msg); ackErr != nil {
		log.Errorf("failed to ack terminally failed task", ackErr)
	}
}

func failureReason(err error) string {
	switch types.KindOf(err) {
	case types.KindNotFound:
		return "schema_missing"
	case types.KindInvalidInput:
		return "invalid_input"
	case types.KindTransientIO:
		return "transient_io"
	case types.KindPermanentIO:
		return "permanent_io"
	default:
		return "internal"
	}
}

// processTask implements steps 2-5 of spec.md §4.8. Step 1
// (deserializing the queue body) already happened inside the Queue
// implementation, which hands back a typed types.IngressTask.
func (wk *Worker) processTask(ctx context.Context, task types.IngressTask) error {
	body, err := wk.blobs.GetObject(ctx, task.Bucket, task.Key)
	if err != nil {
		if types.KindOf(err) == types.KindNotFound {
			// Already ingested by a prior duplicate delivery.
			return nil
		}
		return err
	}

	p, err := wk.parserFor(task.ResolvedSchemaID())
	if err != nil {
		return err
	}

	parseTimer := metrics.NewTimer()
	batch := p.Parse(types.RawBuffer{Bytes: body})
	parseTimer.ObserveDuration(metrics.ParseDuration)

	writeTimer := metrics.NewTimer()
	out, err := wk.w.Write(batch)
	writeTimer.ObserveDuration(metrics.WriteDuration)
	if err != nil {
		return err
	}

	if err := wk.blobs.PutObject(ctx, wk.cfg.DestinationBucket, out.Name, out.Content); err != nil {
		return err
	}

	return wk.blobs.DeleteObject(ctx, task.Bucket, task.Key)
}

// parserFor looks up and caches a Parser for schemaID, resolving the
// backing Schema through the Schema Registry on first use.
func (wk *Worker) parserFor(schemaID string) (*parser.Parser, error) {
	if p, ok := wk.parsers[schemaID]; ok {
		return p, nil
	}

	schema, err := wk.registry.Get(schemaID)
	if err != nil {
		return nil, err
	}

	p, err := parser.New(schema)
	if err != nil {
		return nil, types.Wrap(types.KindInternal, "compile parser for schema "+schemaID, err)
	}
	wk.parsers[schemaID] = p
	return p, nil
}
