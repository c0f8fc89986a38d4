package uploader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUploadSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := New(time.Second)
	err := u.Upload(context.Background(), srv.URL, []byte("hello"))
	require.NoError(t, err)
}

func TestUpload4xxIsTerminalNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	u := New(time.Second)
	err := u.Upload(context.Background(), srv.URL, []byte("hello"))
	require.Error(t, err)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestUpload5xxRetriesThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	u := New(time.Second)
	err := u.Upload(context.Background(), srv.URL, []byte("hello"))
	require.Error(t, err)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestUploadEventuallySucceedsAfterTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u := New(time.Second)
	err := u.Upload(context.Background(), srv.URL, []byte("hello"))
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}
