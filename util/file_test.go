package util

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAndAppend(t *testing.T) {
	file := path.Join(t.TempDir(), "nested", "out.txt")

	require.NoError(t, WriteToFile(file, "a", "b"))
	require.NoError(t, AppendToFile(file, "c"))

	bs, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "a\nb\nc\n", string(bs))

	require.NoError(t, WriteToFile(file, "d"))
	bs, err = os.ReadFile(file)
	require.NoError(t, err)
	require.Equal(t, "d\n", string(bs))
}
