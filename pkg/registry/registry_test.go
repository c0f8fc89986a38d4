package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/cuemby/siloflow/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := t.TempDir()

	r, err := New(Config{
		NodeID:   "node-1",
		BindAddr: "127.0.0.1:0",
		DataDir:  dir,
	})
	require.NoError(t, err)

	require.NoError(t, r.Bootstrap())
	t.Cleanup(func() { _ = r.Shutdown() })

	require.Eventually(t, r.IsLeader, 5*time.Second, 10*time.Millisecond, "never became leader")
	return r
}

func TestRegistryPutGet(t *testing.T) {
	r := newTestRegistry(t)

	schema := types.Schema{
		ID:    "access_log",
		Regex: `(?P<ip>\S+) - - \[(?P<ts>[^\]]+)\]`,
		Columns: []types.Column{
			{Name: "ip", Type: types.ColumnTypeString},
			{Name: "ts", Type: types.ColumnTypeTimestampNS},
		},
	}

	require.NoError(t, r.Put(schema))

	got, err := r.Get("access_log")
	require.NoError(t, err)
	require.Equal(t, schema, got)
}

func TestRegistryPutAlreadyExists(t *testing.T) {
	r := newTestRegistry(t)

	schema := types.Schema{ID: "dup"}
	require.NoError(t, r.Put(schema))

	err := r.Put(schema)
	require.Error(t, err)

	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	require.Equal(t, types.KindAlreadyExists, typed.Kind)
}

func TestRegistryGetNotFound(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Get("missing")
	require.Error(t, err)

	var typed *types.Error
	require.True(t, errors.As(err, &typed))
	require.Equal(t, types.KindNotFound, typed.Kind)
}

func TestRegistryList(t *testing.T) {
	r := newTestRegistry(t)

	require.NoError(t, r.Put(types.Schema{ID: "a"}))
	require.NoError(t, r.Put(types.Schema{ID: "b"}))

	schemas, err := r.List()
	require.NoError(t, err)
	require.Len(t, schemas, 2)
}
