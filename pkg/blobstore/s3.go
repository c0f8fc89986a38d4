package blobstore

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/google/uuid"
)

// S3BlobStore is a BlobStore backed by Amazon S3 (or an S3-compatible
// endpoint such as localstack/MinIO, set via EndpointURL).
//
// Grounded on original_source/src/data/blob_store.rs's S3BlobStore and
// presigned_url_repository.rs's PutObjectRequest.get_presigned_url,
// reimplemented with aws-sdk-go-v2 in place of the Rust rusoto client.
type S3BlobStore struct {
	client   *s3.Client
	presign  *s3.PresignClient
	putBucket string
}

// S3Config configures an S3BlobStore. EndpointURL is optional; set it
// to target localstack/MinIO instead of real AWS.
type S3Config struct {
	Region      string
	EndpointURL string
	PutBucket   string
}

// NewS3BlobStore loads default AWS credentials/region resolution
// (environment, shared config, IMDS) the way aws-sdk-go-v2's
// config.LoadDefaultConfig does, then overrides the endpoint when
// EndpointURL is set.
func NewS3BlobStore(ctx context.Context, cfg S3Config) (*S3BlobStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, types.Wrap(types.KindPermanentIO, "load aws config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &S3BlobStore{
		client:    client,
		presign:   s3.NewPresignClient(client),
		putBucket: cfg.PutBucket,
	}, nil
}

func (s *S3BlobStore) PutObject(ctx context.Context, bucket, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return types.Wrap(types.KindTransientIO, "s3 put object", err).WithContext(bucket, key, "")
	}
	return nil
}

func (s *S3BlobStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, types.Wrap(types.KindTransientIO, "s3 get object", err).WithContext(bucket, key, "")
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, types.Wrap(types.KindTransientIO, "read s3 object body", err).WithContext(bucket, key, "")
	}
	return data, nil
}

func (s *S3BlobStore) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return types.Wrap(types.KindTransientIO, "s3 delete object", err).WithContext(bucket, key, "")
	}
	return nil
}

func (s *S3BlobStore) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, types.Wrap(types.KindTransientIO, "s3 list objects", err).WithContext(bucket, "", "")
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}

// PresignPut mints a presigned PUT URL under a freshly generated key,
// the Go equivalent of PutObjectRequest.get_presigned_url in the Rust
// prototype.
func (s *S3BlobStore) PresignPut(ctx context.Context, bucket string, expiry time.Duration) (types.PresignedURL, error) {
	key := uuid.NewString()

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return types.PresignedURL{}, types.Wrap(types.KindTransientIO, "presign put object", err).WithContext(bucket, key, "")
	}

	return types.PresignedURL{
		URL:       req.URL,
		Bucket:    bucket,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}
