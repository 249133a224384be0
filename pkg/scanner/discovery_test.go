package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverFiles_BasicDirectory(t *testing.T) {
	tmp := componentTree(t)

	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)

	// All results should be absolute paths.
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f), "expected absolute path, got %s", f)
	}

	assert.Equal(t, []string{"App.svelte", "Button.svelte", "Card.svelte"}, fileNames(files))
}

func TestDiscoverFiles_SkipsDefaultExcludes(t *testing.T) {
	tmp := componentTree(t)
	writeFile(t, filepath.Join(tmp, "node_modules", "lib"), "Dep.svelte", "<script lang=\"ts\"></script>")
	writeFile(t, filepath.Join(tmp, ".svelte-kit", "generated"), "Root.svelte", "<script lang=\"ts\"></script>")
	writeFile(t, filepath.Join(tmp, "build"), "Out.svelte", "<script lang=\"ts\"></script>")

	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)

	names := fileNames(files)
	assert.NotContains(t, names, "Dep.svelte")
	assert.NotContains(t, names, "Root.svelte")
	assert.NotContains(t, names, "Out.svelte")
}

func TestDiscoverFiles_CustomPatterns(t *testing.T) {
	tmp := componentTree(t)

	cfg := ScanConfig{
		Include: []string{"src/lib/**/*.svelte"},
		Exclude: []string{"**/Card.svelte"},
	}
	files, err := DiscoverFiles(tmp, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Button.svelte"}, fileNames(files))
}

func TestDiscoverFiles_SortedOutput(t *testing.T) {
	files, err := DiscoverFiles(componentTree(t), DefaultScanConfig())
	require.NoError(t, err)
	require.Greater(t, len(files), 1)

	for i := 1; i < len(files); i++ {
		assert.LessOrEqual(t, files[i-1], files[i], "files should be sorted")
	}
}

func TestDiscoverFiles_EmptyDirectory(t *testing.T) {
	tmp := t.TempDir()
	files, err := DiscoverFiles(tmp, DefaultScanConfig())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverFiles_MissingRoot(t *testing.T) {
	_, err := DiscoverFiles(filepath.Join(t.TempDir(), "nope"), DefaultScanConfig())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscoverFiles_InvalidGlob(t *testing.T) {
	cfg := DefaultScanConfig()
	cfg.Exclude = append(cfg.Exclude, "[invalid")
	_, err := DiscoverFiles(t.TempDir(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestExcluded(t *testing.T) {
	assert.True(t, Excluded("node_modules/**", "node_modules", true))
	assert.True(t, Excluded("node_modules/**", "node_modules/x/A.svelte", false))
	assert.False(t, Excluded("node_modules/**", "src/node_modules_old", true))
	assert.True(t, Excluded("**/*.test.svelte", "src/A.test.svelte", false))
}

// --- helpers ---

const buttonSource = `<script lang="ts">
    export let label: string;
    export let size: 'SMALL' | 'LARGE' = 'SMALL';
</script>
<button>{label}</button>
`

const cardSource = `<script lang="ts">
    export let title = 'Untitled';
    export let onSelect = () => {};
</script>
`

// componentTree lays out a small project:
//
//	src/App.svelte            (no script block)
//	src/lib/Button.svelte
//	src/lib/Card.svelte
//	src/lib/util.ts
func componentTree(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "src"), "App.svelte", "<main>hello</main>\n")
	writeFile(t, filepath.Join(tmp, "src", "lib"), "Button.svelte", buttonSource)
	writeFile(t, filepath.Join(tmp, "src", "lib"), "Card.svelte", cardSource)
	writeFile(t, filepath.Join(tmp, "src", "lib"), "util.ts", "export const x = 1;\n")
	return tmp
}

func fileNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
