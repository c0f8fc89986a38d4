package tailer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTailerReadsFullContentAcrossMultipleReads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.txt")
	content := []byte("Mary has a little lamb\nLittle lamb,\nlittle lamb")
	require.NoError(t, os.WriteFile(path, content, 0644))

	tl, err := New(path, 10)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tl.Close() })

	var read []byte
	for {
		buf, ok, err := tl.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		read = append(read, buf.Bytes...)
	}

	require.Equal(t, content, read)
	require.Equal(t, Quiescent, tl.State())
}

func TestTailerDetectsRotationAndReadsNewContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.txt")
	require.NoError(t, os.WriteFile(path, []byte("ABC"), 0644))

	tl, err := New(path, 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tl.Close() })

	buf, ok, err := tl.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ABC", string(buf.Bytes))

	_, ok, err = tl.Read()
	require.NoError(t, err)
	require.False(t, ok)

	rotated, err := tl.IsRotated()
	require.NoError(t, err)
	require.False(t, rotated)

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(path, []byte("DEF"), 0644))

	rotated, err = tl.IsRotated()
	require.NoError(t, err)
	require.True(t, rotated)

	require.NoError(t, tl.Rotate())
	require.Equal(t, Following, tl.State())

	buf, ok, err = tl.Read()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "DEF", string(buf.Bytes))
}
