package blobstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlobStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBlobStore()

	require.NoError(t, s.PutObject(ctx, "b", "k", []byte("hello")))

	got, err := s.GetObject(ctx, "b", "k")
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)

	require.NoError(t, s.DeleteObject(ctx, "b", "k"))

	_, err = s.GetObject(ctx, "b", "k")
	require.Error(t, err)
	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	require.Equal(t, types.KindNotFound, typed.Kind)
}

func TestMemoryBlobStoreListObjectsByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBlobStore()

	require.NoError(t, s.PutObject(ctx, "b", "logs/a", []byte("1")))
	require.NoError(t, s.PutObject(ctx, "b", "logs/b", []byte("2")))
	require.NoError(t, s.PutObject(ctx, "b", "other", []byte("3")))

	keys, err := s.ListObjects(ctx, "b", "logs/")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"logs/a", "logs/b"}, keys)
}

func TestMemoryBlobStorePresignPut(t *testing.T) {
	s := NewMemoryBlobStore()
	url, err := s.PresignPut(context.Background(), "b", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "b", url.Bucket)
	require.NotEmpty(t, url.Key)
	require.True(t, url.ExpiresAt.After(time.Now()))
}
