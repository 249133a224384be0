package util

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMmapReader_ReadSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Button.svelte")
	content := "<script lang=\"ts\">\n  export let label: string;\n</script>\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	reader := NewMmapReader(DiscardLogger())
	data, err := reader.ReadSource(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	stats := reader.Stats()
	assert.Equal(t, int64(1), stats.Reads)
	assert.Equal(t, int64(0), stats.MmapFailures)
}

func TestMmapReader_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Empty.svelte")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	data, err := NewMmapReader(nil).ReadSource(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestMmapReader_MissingFileErrorIsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.svelte")

	_, err := NewMmapReader(nil).ReadSource(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var pathErr *fs.PathError
	require.True(t, errors.As(err, &pathErr))
	assert.Equal(t, path, pathErr.Path)
}

func TestGetOptimalPoolSize(t *testing.T) {
	size := GetOptimalPoolSize()
	assert.GreaterOrEqual(t, size, 4)
	assert.LessOrEqual(t, size, 32)

	assert.Equal(t, 7, GetOptimalPoolSizeWithOverride(7))
	assert.Equal(t, size, GetOptimalPoolSizeWithOverride(0))
}
