package writer

import (
	"strings"
	"testing"

	"github.com/cuemby/siloflow/pkg/metrics"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestWriterProducesNamedFile(t *testing.T) {
	schema := types.Schema{
		ID: "kv",
		Columns: []types.Column{
			{Name: "f", Type: types.ColumnTypeString},
			{Name: "n", Type: types.ColumnTypeInt64, Nullable: true},
		},
	}
	batch := types.NewRowBatch(schema)
	s1, s2 := "hello", "7"
	batch.AppendRow(map[string]*string{"f": &s1, "n": &s2})
	batch.AppendRow(map[string]*string{"f": &s1, "n": nil})

	out, err := New().Write(batch)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out.Name, "parquet-"))
	require.NotEmpty(t, out.Content)
}

func TestWriterDropsUnparseableIntAsNullInsteadOfFailing(t *testing.T) {
	schema := types.Schema{
		ID:      "bad",
		Columns: []types.Column{{Name: "n", Type: types.ColumnTypeInt64, Nullable: true}},
	}
	batch := types.NewRowBatch(schema)
	bad, good := "not-a-number", "7"
	batch.AppendRow(map[string]*string{"n": &bad})
	batch.AppendRow(map[string]*string{"n": &good})

	before := testutil.ToFloat64(metrics.ParseMisses)

	out, err := New().Write(batch)
	require.NoError(t, err)
	require.NotEmpty(t, out.Content)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.ParseMisses))
}
