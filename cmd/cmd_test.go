package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zac-garby/noteboks/highlight"
)

func TestInitConfigurationFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")

	written, err := initConfigurationFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	cfg, err := highlight.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "noteboks", cfg.Name)
	assert.Equal(t, "org", cfg.Language)
	assert.Equal(t, ".noteboks-cache", cfg.CacheDir)
}

func TestLoadConfigFallbacks(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	oldCfgFile := cfgFile
	defer func() { cfgFile = oldCfgFile }()

	// no --config and no .noteboks.yaml: built-in defaults
	cfgFile = ""
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "org", cfg.Language)
	assert.Empty(t, cfg.Path)

	// a .noteboks.yaml in the working directory is picked up
	require.NoError(t, os.WriteFile(".noteboks.yaml", []byte("language: org\njobs: 3\n"), 0o644))
	cfg, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Jobs)

	// --config pointing nowhere is an error, not a silent fallback
	cfgFile = filepath.Join(dir, "nope.yaml")
	_, err = loadConfig()
	assert.Error(t, err)
}
