package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/cuemby/siloflow/pkg/blobstore"
	"github.com/cuemby/siloflow/pkg/control"
	"github.com/cuemby/siloflow/pkg/queue"
	"github.com/cuemby/siloflow/pkg/tailer"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/cuemby/siloflow/pkg/uploader"
	"github.com/stretchr/testify/require"
)

// reachableBlobStore wraps a MemoryBlobStore but mints PresignPut URLs
// that actually point at an httptest server, so the Uploader's real
// HTTP PUT has somewhere to land.
type reachableBlobStore struct {
	*blobstore.MemoryBlobStore
	baseURL string
}

func (r *reachableBlobStore) PresignPut(ctx context.Context, bucket string, expiry time.Duration) (types.PresignedURL, error) {
	key := "key-1"
	return types.PresignedURL{
		URL:       fmt.Sprintf("%s/%s/%s", r.baseURL, bucket, key),
		Bucket:    bucket,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

func startControl(t *testing.T, blobs blobstore.BlobStore) (*control.Client, *queue.MemoryQueue) {
	t.Helper()

	q := queue.NewMemoryQueue(time.Minute)
	srv := control.NewServer(control.Config{ListenAddr: "127.0.0.1:0", SourceBucket: "raw"}, blobs, q)
	require.NoError(t, srv.Listen())

	go func() { _ = srv.Serve() }()
	t.Cleanup(srv.Stop)

	client, err := control.Dial(context.Background(), srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, q
}

func newTestTailer(t *testing.T, content string) *tailer.Tailer {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "agent-test-*.log")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tl, err := tailer.New(f.Name(), 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tl.Close() })
	return tl
}

func TestTickUploadsBufferAndPublishesTask(t *testing.T) {
	var uploaded []byte
	dest := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uploaded, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer dest.Close()

	blobs := &reachableBlobStore{MemoryBlobStore: blobstore.NewMemoryBlobStore(), baseURL: dest.URL}
	client, q := startControl(t, blobs)
	tl := newTestTailer(t, "Mary had a little lamb\n")

	a := New(Config{}, tl, client, uploader.New(5*time.Second))

	err := a.Tick(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Mary had a little lamb\n", string(uploaded))

	msgs, err := q.Receive(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "raw", msgs[0].Task.Bucket)
	require.Empty(t, a.pending)
}

func TestTickIsNoopOnEmptyFileNotRotated(t *testing.T) {
	blobs := blobstore.NewMemoryBlobStore()
	client, _ := startControl(t, blobs)
	tl := newTestTailer(t, "")

	a := New(Config{}, tl, client, uploader.New(5*time.Second))
	require.NoError(t, a.Tick(context.Background()))
	require.Empty(t, a.pending)
}

func TestFailedUploadIsBufferedForRetry(t *testing.T) {
	// A plain MemoryBlobStore mints memory:// URLs the Uploader's real
	// HTTP client cannot reach, so the upload fails as intended here.
	blobs := blobstore.NewMemoryBlobStore()
	client, q := startControl(t, blobs)
	tl := newTestTailer(t, "line one\n")

	up := uploader.New(2 * time.Second)
	a := New(Config{MaxRetries: 2}, tl, client, up)

	err := a.Tick(context.Background())
	require.Error(t, err)
	require.Len(t, a.pending, 1)

	msgs, err := q.Receive(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestPendingBufferDroppedAfterMaxRetries(t *testing.T) {
	blobs := blobstore.NewMemoryBlobStore()
	client, _ := startControl(t, blobs)
	tl := newTestTailer(t, "line one\n")

	up := uploader.New(1 * time.Second)
	a := New(Config{MaxRetries: 1}, tl, client, up)

	require.Error(t, a.Tick(context.Background()))
	require.Len(t, a.pending, 1)

	// Next tick retries the pending buffer, exhausts MaxRetries, drops it.
	require.NoError(t, a.Tick(context.Background()))
	require.Empty(t, a.pending)
}
