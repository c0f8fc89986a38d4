package agent

import (
	"context"
	"time"

	"github.com/cuemby/siloflow/pkg/control"
	"github.com/cuemby/siloflow/pkg/log"
	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/tailer"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/cuemby/siloflow/pkg/uploader"
)

// Config configures an Agent. MaxPending and MaxRetries bound the
// in-memory retry buffer described by spec.md §4.6: a buffer that
// fails to upload is held here rather than dropped. It is dropped once
// MaxRetries is exhausted, or, as the oldest entry, when a new failed
// buffer arrives while MaxPending entries are already held.
type Config struct {
	MaxPending int
	MaxRetries int
}

func (c Config) withDefaults() Config {
	if c.MaxPending <= 0 {
		c.MaxPending = 16
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 5
	}
	return c
}

// pendingBuffer is a RawBuffer that failed upload at least once and is
// awaiting retry on a future tick.
type pendingBuffer struct {
	bytes   []byte
	retries int
}

// Agent composes a Tailer, a Control Service client, and an Uploader
// into the Agent Loop (C6): one tick reads from the tailed file,
// requests an upload URL, uploads, and notifies the Control Service so
// it can publish the corresponding IngressTask.
//
// Grounded on original_source/src/agent/agent.rs's Agent/work() shape,
// generalized with the in-memory retry buffer spec.md §4.6 prescribes
// (the prototype has no equivalent — a failed upload there simply
// surfaces the error), and on pkg/worker/worker.go's ticker+stopCh loop
// pattern for Run.
type Agent struct {
	cfg     Config
	tailer  *tailer.Tailer
	client  *control.Client
	upload  *uploader.Uploader
	pending []pendingBuffer

	stopCh chan struct{}
}

// New assembles an Agent from its already-constructed collaborators.
func New(cfg Config, t *tailer.Tailer, client *control.Client, up *uploader.Uploader) *Agent {
	return &Agent{
		cfg:    cfg.withDefaults(),
		tailer: t,
		client: client,
		upload: up,
		stopCh: make(chan struct{}),
	}
}

// Run drives Tick on a ticker until Stop is called, the teacher's
// heartbeatLoop/containerExecutorLoop shape narrowed to a single loop.
func (a *Agent) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := a.Tick(ctx); err != nil {
				log.Errorf("agent tick failed", err)
			}
		case <-ctx.Done():
			return
		case <-a.stopCh:
			return
		}
	}
}

// Stop ends a running Run loop.
func (a *Agent) Stop() {
	close(a.stopCh)
}

// Tick performs one Agent Loop iteration per spec.md §4.6:
//  1. drain one pending (previously failed) buffer if present;
//  2. otherwise read the tailed file and, on a non-empty buffer,
//     request an upload URL, upload, and notify the Control Service;
//  3. on EOF, rotate if the underlying file has rotated;
//  4. otherwise do nothing (the caller controls tick cadence).
func (a *Agent) Tick(ctx context.Context) error {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.AgentTickDuration)

	if len(a.pending) > 0 {
		return a.drainOnePending(ctx)
	}

	buf, ok, err := a.tailer.Read()
	if err != nil {
		return types.Wrap(types.KindInternal, "tailer read", err)
	}
	if ok {
		return a.handleBuffer(ctx, buf.Bytes)
	}

	rotated, err := a.tailer.IsRotated()
	if err != nil {
		return types.Wrap(types.KindInternal, "check tailer rotation", err)
	}
	if rotated {
		log.Info("tailed file rotated, switching to new file")
		return a.tailer.Rotate()
	}
	return nil
}

// handleBuffer uploads a freshly read buffer. On failure the bytes are
// queued in the retry buffer instead of being dropped, since the
// Tailer's offset has already advanced past them.
func (a *Agent) handleBuffer(ctx context.Context, buf []byte) error {
	if err := a.uploadAndNotify(ctx, buf); err != nil {
		a.enqueuePending(buf)
		return err
	}
	return nil
}

// drainOnePending retries the oldest buffered upload. A buffer that
// exhausts MaxRetries is dropped and counted against
// metrics.AgentBufferDropped rather than retried forever.
func (a *Agent) drainOnePending(ctx context.Context) error {
	head := a.pending[0]

	err := a.uploadAndNotify(ctx, head.bytes)
	if err == nil {
		a.pending = a.pending[1:]
		return nil
	}

	head.retries++
	if head.retries >= a.cfg.MaxRetries {
		a.pending = a.pending[1:]
		metrics.AgentBufferDropped.Inc()
		log.Errorf("dropping buffer after exhausting retries, data loss", err)
		return nil
	}

	a.pending[0] = head
	return err
}

// enqueuePending appends buf to the retry buffer, dropping the oldest
// entry (and counting it as lost) when MaxPending is already full.
func (a *Agent) enqueuePending(buf []byte) {
	if len(a.pending) >= a.cfg.MaxPending {
		a.pending = a.pending[1:]
		metrics.AgentBufferDropped.Inc()
		log.Errorf("dropping oldest buffered upload, retry buffer full", types.New(types.KindInternal, "retry buffer full"))
	}

	cp := make([]byte, len(buf))
	copy(cp, buf)
	a.pending = append(a.pending, pendingBuffer{bytes: cp})
}

// uploadAndNotify requests a pool of presigned URLs, uploads buf to the
// first one, and notifies the Control Service via DeleteKeys so it publishes the
// corresponding IngressTask. Per spec.md §4.6, unused pool URLs are
// simply left to expire.
func (a *Agent) uploadAndNotify(ctx context.Context, buf []byte) error {
	createResp, err := a.client.CreateKeys(ctx)
	if err != nil {
		return err
	}
	if len(createResp.Keys) == 0 {
		return types.New(types.KindTransientIO, "control service returned no upload keys")
	}

	url := createResp.Keys[0]
	if err := a.upload.Upload(ctx, url, buf); err != nil {
		return err
	}

	if _, err := a.client.DeleteKeys(ctx, []string{url}); err != nil {
		return err
	}
	return nil
}
