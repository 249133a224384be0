package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/propspec/pkg/scanner"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadProjectConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `include:
  - "src/**/*.svelte"
exclude:
  - "src/legacy/**"
exclude_categories: [functions]
allow_untyped: true
cache_size: 64
workers: 3
log_file: tools.jsonl
`)

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**/*.svelte"}, cfg.Include)
	assert.Equal(t, []string{"src/legacy/**"}, cfg.Exclude)
	assert.Equal(t, []string{"functions"}, cfg.ExcludeCategories)
	assert.True(t, cfg.AllowUntyped)
	assert.Equal(t, 64, cfg.CacheSize)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "tools.jsonl", cfg.LogFile)

	sc := cfg.scanConfig()
	assert.Equal(t, []string{"src/**/*.svelte"}, sc.Include)
	assert.Contains(t, sc.Exclude, "node_modules/**")
	assert.Contains(t, sc.Exclude, "src/legacy/**")
	assert.Equal(t, 3, sc.Workers)
}

func TestLoadProjectConfig_Missing(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		_, err := loadProjectConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("default path", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := loadProjectConfig("")
		require.NoError(t, err)
		assert.Equal(t, &ProjectConfig{}, cfg)
		assert.Equal(t, scanner.DefaultScanConfig().Include, cfg.scanConfig().Include)
	})
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "include: [unclosed\n")
	_, err := loadProjectConfig(bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.yaml")
	writeFile(t, negative, "workers: -1\n")
	_, err = loadProjectConfig(negative)
	assert.ErrorContains(t, err, "must not be negative")
}
