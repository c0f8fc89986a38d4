package queue

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/require"
)

// startTestNATS boots an in-process JetStream-enabled NATS server for
// the lifetime of the test, the same embedded-server pattern other
// packages in this ecosystem use in place of a shared test broker.
func startTestNATS(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	opts := &natsserver.Options{
		Port:      -1,
		JetStream: true,
		StoreDir:  dir,
	}
	srv, err := natsserver.NewServer(opts)
	require.NoError(t, err)
	srv.Start()
	require.True(t, srv.ReadyForConnections(3*time.Second))
	t.Cleanup(srv.Shutdown)
	return srv.ClientURL()
}

func newTestNATSQueue(t *testing.T) *NATSQueue {
	t.Helper()
	url := startTestNATS(t)
	q, err := NewNATSQueue(context.Background(), NATSConfig{
		URL:          url,
		StreamName:   "TEST_TASKS",
		Subject:      "test.tasks",
		ConsumerName: "test-workers",
		AckWait:      time.Second,
		MaxDeliver:   3,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestNATSQueueEnqueueReceiveAck(t *testing.T) {
	ctx := context.Background()
	q := newTestNATSQueue(t)

	require.NoError(t, q.Enqueue(ctx, types.IngressTask{Bucket: "b", Key: "k"}))

	msgs, err := q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "k", msgs[0].Task.Key)
	require.Equal(t, 0, msgs[0].RedeliveryCount)

	require.NoError(t, q.Ack(ctx, msgs[0]))

	msgs, err = q.Receive(ctx, 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestNATSQueueNackRedeliversWithIncrementedCount(t *testing.T) {
	ctx := context.Background()
	q := newTestNATSQueue(t)

	require.NoError(t, q.Enqueue(ctx, types.IngressTask{Bucket: "b", Key: "k"}))

	msgs, err := q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, q.Nack(ctx, msgs[0]))

	msgs, err = q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, 1, msgs[0].RedeliveryCount)
}

func TestNATSQueueAckWaitRedeliversUnacked(t *testing.T) {
	ctx := context.Background()
	q := newTestNATSQueue(t)

	require.NoError(t, q.Enqueue(ctx, types.IngressTask{Bucket: "b", Key: "k"}))

	_, err := q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)

	msgs, err := q.Receive(ctx, 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Empty(t, msgs, "message should still be invisible within its ack-wait window")

	time.Sleep(1200 * time.Millisecond)

	msgs, err = q.Receive(ctx, 10, time.Second)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, 1, msgs[0].RedeliveryCount)
}

func TestNATSQueueIsConnected(t *testing.T) {
	q := newTestNATSQueue(t)
	require.True(t, q.IsConnected())
}
