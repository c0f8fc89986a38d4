// Package blobstore provides the Blob Store collaborator (§6): object
// storage for raw uploads and finished Parquet files, plus presigned
// PUT URLs the Control Service hands out to Agents.
package blobstore

import (
	"context"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
)

// BlobStore stores and retrieves objects by bucket+key, and can mint
// presigned PUT URLs so an Agent can upload directly without routing
// bytes through the Control Service.
//
// Grounded on original_source/src/data/blob_store.rs's BlobStore
// trait (create_bucket/put_object/get_object/delete_object), extended
// with PresignPut to cover original_source's separate
// presigned_url_repository.rs.
type BlobStore interface {
	PutObject(ctx context.Context, bucket, key string, body []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteObject(ctx context.Context, bucket, key string) error
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)

	// PresignPut mints a single-use upload URL for bucket valid until
	// expiry. Key is generated here rather than accepted from the
	// caller, closing the prototype's
	// "TODO: create partitions by agent id, account id, etc." gap by
	// keying every upload by a fresh uuid regardless of caller input.
	PresignPut(ctx context.Context, bucket string, expiry time.Duration) (types.PresignedURL, error)
}
