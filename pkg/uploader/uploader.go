// Package uploader implements the Uploader (C5): a single HTTP PUT to
// a presigned URL with bounded exponential-backoff retry.
//
// Grounded on original_source/src/agent/uploader.rs's minimal PUT
// wrapper — the Rust version's own "TODO: retry strategy" is the gap
// spec.md §4.5 closes with an explicit backoff policy.
package uploader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/types"
)

// Uploader performs presigned-URL PUTs with retry.
type Uploader struct {
	client *http.Client
}

// New returns an Uploader with the given per-attempt HTTP timeout.
func New(timeout time.Duration) *Uploader {
	return &Uploader{client: &http.Client{Timeout: timeout}}
}

// Upload PUTs body to url. Connection failures and 5xx responses are
// retried with exponential backoff (base 100ms, cap 5s, 25% jitter,
// max 3 attempts); 4xx responses are terminal and returned
// immediately as InvalidInput.
func (u *Uploader) Upload(ctx context.Context, url string, body []byte) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = 5 * time.Second
	policy.RandomizationFactor = 0.25
	retryable := backoff.WithMaxRetries(policy, 2) // 3 attempts total

	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			metrics.UploadRetries.Inc()
		}
		return u.put(ctx, url, body)
	}

	err := backoff.Retry(op, backoff.WithContext(retryable, ctx))
	if err != nil {
		var terminal *backoff.PermanentError
		if errors.As(err, &terminal) {
			return terminal.Err
		}
		return types.Wrap(types.KindTransientIO, "upload exhausted retries", err)
	}
	return nil
}

func (u *Uploader) put(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(types.Wrap(types.KindInvalidInput, "build upload request", err))
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return types.Wrap(types.KindTransientIO, "upload request failed", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return backoff.Permanent(types.New(types.KindInvalidInput, "upload rejected with status "+resp.Status))
	default:
		return types.New(types.KindTransientIO, "upload failed with status "+resp.Status)
	}
}
