package blobstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
	"github.com/google/uuid"
)

// MemoryBlobStore is an in-process BlobStore for tests and
// single-binary demos; PresignPut returns a memory://local/<bucket>/<key>
// URL rather than a real HTTP endpoint, so an HTTP PUT to it fails.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryBlobStore returns an empty store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

func (m *MemoryBlobStore) PutObject(_ context.Context, bucket, key string, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(body))
	copy(cp, body)
	m.objects[objectKey(bucket, key)] = cp
	return nil
}

func (m *MemoryBlobStore) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[objectKey(bucket, key)]
	if !ok {
		return nil, types.New(types.KindNotFound, fmt.Sprintf("object %s/%s", bucket, key)).WithContext(bucket, key, "")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryBlobStore) DeleteObject(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey(bucket, key))
	return nil
}

func (m *MemoryBlobStore) ListObjects(_ context.Context, bucket, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	want := bucket + "/" + prefix
	for k := range m.objects {
		if strings.HasPrefix(k, want) {
			keys = append(keys, strings.TrimPrefix(k, bucket+"/"))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryBlobStore) PresignPut(_ context.Context, bucket string, expiry time.Duration) (types.PresignedURL, error) {
	key := uuid.NewString()
	// Shaped like a real scheme://host/bucket/key presigned URL (not
	// memory://bucket/key) so deriveBucketKey's fixed-index split
	// behaves the same against this store as against S3.
	return types.PresignedURL{
		URL:       fmt.Sprintf("memory://local/%s/%s", bucket, key),
		Bucket:    bucket,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}
