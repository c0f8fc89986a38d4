package control

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/siloflow/pkg/blobstore"
	"github.com/cuemby/siloflow/pkg/queue"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

func startTestServer(t *testing.T) (*Client, *queue.MemoryQueue) {
	t.Helper()

	blobs := blobstore.NewMemoryBlobStore()
	q := queue.NewMemoryQueue(time.Minute)

	srv := NewServer(Config{SourceBucket: "source", URLPoolSize: 3}, blobs, q)

	lis := bufconn.Listen(1024 * 1024)
	go func() {
		_ = srv.grpc.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(context.Context, string) (net.Conn, error) { return lis.Dial() }
	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &Client{conn: conn}, q
}

func TestCreateKeysReturnsPoolSizeURLs(t *testing.T) {
	client, _ := startTestServer(t)

	resp, err := client.CreateKeys(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Keys, 3)
	for _, k := range resp.Keys {
		require.True(t, strings.Contains(k, "source"))
	}
}

func TestDeleteKeysPublishesOneTaskPerURL(t *testing.T) {
	client, q := startTestServer(t)

	createResp, err := client.CreateKeys(context.Background())
	require.NoError(t, err)

	_, err = client.DeleteKeys(context.Background(), createResp.Keys)
	require.NoError(t, err)

	msgs, err := q.Receive(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, len(createResp.Keys))
}

func TestDeriveBucketKey(t *testing.T) {
	bucket, key, err := deriveBucketKey("http://localhost:4566/default-bucket/d4683880-f813?X-Amz-Algorithm=AWS4")
	require.NoError(t, err)
	require.Equal(t, "default-bucket", bucket)
	require.Equal(t, "d4683880-f813", key)
}

func TestDeriveBucketKeyRejectsMalformed(t *testing.T) {
	_, _, err := deriveBucketKey("not-a-url")
	require.Error(t, err)
}
