package highlight

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "noteboks", cfg.Name)
	assert.Equal(t, "org", cfg.Language)
	assert.Equal(t, ".noteboks-cache", cfg.CacheDir)
	assert.Empty(t, cfg.Rules)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".noteboks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: vault
jobs: 3
ignore-captures:
  - comment
cache-dir: /tmp/nb-cache
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "vault", cfg.Name)
	assert.Equal(t, "org", cfg.Language) // default survives partial config
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, []string{"comment"}, cfg.IgnoreCaptures)
	assert.Equal(t, "/tmp/nb-cache", cfg.CacheDir)
	assert.Equal(t, path, cfg.Path)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":\n - ["), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestConfigWorkers(t *testing.T) {
	assert.Equal(t, 3, Config{Jobs: 3}.Workers())
	assert.Equal(t, runtime.NumCPU(), Config{}.Workers())
}

func TestConfigCacheDependencies(t *testing.T) {
	assert.Empty(t, Config{}.CacheDependencies())

	cfg := Config{Rules: "r.scm", NodeTypes: "n.json", Path: ".noteboks.yaml"}
	assert.Equal(t, []string{"r.scm", "n.json", ".noteboks.yaml"}, cfg.CacheDependencies())
}

func TestNewFromConfigDefaults(t *testing.T) {
	e, err := NewFromConfig(DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, e.Diagnostics(), "built-in rules must compile against the built-in catalog")
	assert.Greater(t, e.Query().RuleCount(), 20)
}

func TestNewFromConfigUnknownLanguage(t *testing.T) {
	_, err := NewFromConfig(Config{Language: "markdown"})
	assert.Error(t, err)
}

func TestNewFromConfigCustomFiles(t *testing.T) {
	dir := t.TempDir()

	catalog := filepath.Join(dir, "node_types.json")
	require.NoError(t, os.WriteFile(catalog, []byte(`[
		{"type": "note", "named": true, "fields": {"title": {}}},
		{"type": "title", "named": true, "fields": {}}
	]`), 0o644))

	rules := filepath.Join(dir, "rules.scm")
	require.NoError(t, os.WriteFile(rules, []byte(`(note title: (title) @heading)`), 0o644))

	e, err := NewFromConfig(Config{
		Language:       "zettel",
		NodeTypes:      catalog,
		Rules:          rules,
		IgnoreCaptures: []string{"heading"},
	})
	require.NoError(t, err)
	assert.Empty(t, e.Diagnostics())
	assert.Equal(t, 1, e.Query().RuleCount())
	assert.Equal(t, "zettel", e.Language().Name())
}

func TestNewAdHoc(t *testing.T) {
	e, err := NewAdHoc(DefaultConfig(), `(headline item: (item) @item)`)
	require.NoError(t, err)
	assert.Empty(t, e.Diagnostics())
	assert.Equal(t, 1, e.Query().RuleCount())

	e, err = NewAdHoc(DefaultConfig(), `(bogus) @x`)
	require.NoError(t, err)
	assert.Len(t, e.Diagnostics(), 1)
}
