package control

import (
	"strings"

	"github.com/cuemby/siloflow/pkg/types"
)

// deriveBucketKey implements spec.md §4.7's URL → Task derivation:
// treat the URL as scheme://host/<bucket>/<key>?...; splitting on '/'
// puts bucket at index 3 and key (plus any query string) at index 4.
func deriveBucketKey(presignedURL string) (bucket, key string, err error) {
	parts := strings.Split(presignedURL, "/")
	if len(parts) < 5 {
		return "", "", types.New(types.KindInvalidInput, "presigned url has no bucket/key path: "+presignedURL)
	}

	bucket = parts[3]
	key = strings.SplitN(parts[4], "?", 2)[0]

	if bucket == "" || key == "" {
		return "", "", types.New(types.KindInvalidInput, "presigned url missing bucket or key: "+presignedURL)
	}
	return bucket, key, nil
}
