package parser

import (
	"testing"

	"github.com/cuemby/siloflow/pkg/types"
	"github.com/stretchr/testify/require"
)

func testSchema() types.Schema {
	return types.Schema{
		ID:    "kv",
		Regex: `f=(?P<f>\w+),b=(?P<b>\w+)?`,
		Columns: []types.Column{
			{Name: "f", Type: types.ColumnTypeString},
			{Name: "b", Type: types.ColumnTypeString, Nullable: true},
		},
	}
}

func TestParserParsesMatchingLines(t *testing.T) {
	p, err := New(testSchema())
	require.NoError(t, err)

	batch := p.Parse(types.RawBuffer{Bytes: []byte("f=o1,b=ar\nf=o2,b=99\n")})

	require.Equal(t, 2, batch.Len())
	require.Equal(t, []string{"o1", "o2"}, derefAll(batch.Columns["f"]))
	require.Equal(t, []string{"ar", "99"}, derefAll(batch.Columns["b"]))
}

func TestParserSkipsNonMatchingLinesInsteadOfPanicking(t *testing.T) {
	p, err := New(testSchema())
	require.NoError(t, err)

	require.NotPanics(t, func() {
		batch := p.Parse(types.RawBuffer{Bytes: []byte("garbage\nf=ok,b=1\n")})
		require.Equal(t, 1, batch.Len())
	})
}

func TestParserSkipsBlankLines(t *testing.T) {
	p, err := New(testSchema())
	require.NoError(t, err)

	batch := p.Parse(types.RawBuffer{Bytes: []byte("\n\nf=x,b=y\n\n")})
	require.Equal(t, 1, batch.Len())
}

func TestNewRejectsInvalidRegex(t *testing.T) {
	_, err := New(types.Schema{ID: "bad", Regex: "("})
	require.Error(t, err)
}

func derefAll(ptrs []*string) []string {
	out := make([]string, len(ptrs))
	for i, p := range ptrs {
		if p != nil {
			out[i] = *p
		}
	}
	return out
}
