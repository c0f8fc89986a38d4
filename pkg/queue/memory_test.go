package queue

import (
	"context"
	"testing"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueEnqueueReceiveAck(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(time.Minute)

	require.NoError(t, q.Enqueue(ctx, types.IngressTask{Bucket: "b", Key: "k"}))

	msgs, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "k", msgs[0].Task.Key)
	require.Equal(t, 0, msgs[0].RedeliveryCount)

	require.NoError(t, q.Ack(ctx, msgs[0]))

	msgs, err = q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestMemoryQueueNackMakesImmediatelyVisible(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(time.Hour)

	require.NoError(t, q.Enqueue(ctx, types.IngressTask{Bucket: "b", Key: "k"}))

	msgs, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	require.NoError(t, q.Nack(ctx, msgs[0]))

	msgs, err = q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, 1, msgs[0].RedeliveryCount)
}

func TestMemoryQueueVisibilityTimeoutHidesUnacked(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(time.Hour)

	require.NoError(t, q.Enqueue(ctx, types.IngressTask{Bucket: "b", Key: "k"}))
	_, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)

	msgs, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}
