package highlight

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/zac-garby/noteboks/internal/treeio"
	"github.com/zac-garby/noteboks/org"
	"github.com/zac-garby/noteboks/tree"
)

// Config is the vault configuration, usually read from .noteboks.yaml
// at the vault root. Zero values fall back to the built-in Org grammar
// and rule set.
type Config struct {
	Name           string   `yaml:"name"`
	Language       string   `yaml:"language"`
	NodeTypes      string   `yaml:"node-types"`
	Rules          string   `yaml:"rules"`
	IgnoreCaptures []string `yaml:"ignore-captures"`
	CacheDir       string   `yaml:"cache-dir"`
	Jobs           int      `yaml:"jobs"`

	// Path records where the config was loaded from, so caches can
	// treat it as a dependency.
	Path string `yaml:"-"`
}

// DefaultConfig returns the configuration used when no .noteboks.yaml
// is present.
func DefaultConfig() Config {
	return Config{
		Name:     "noteboks",
		Language: "org",
		CacheDir: ".noteboks-cache",
	}
}

// LoadConfig reads and parses a .noteboks.yaml file.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}
	config.Path = path
	return config, nil
}

// NewFromConfig builds an engine from a configuration: its language
// catalog, rule source and ignored captures.
func NewFromConfig(cfg Config) (*Engine, error) {
	lang, err := cfg.language()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.ruleSource()
	if err != nil {
		return nil, err
	}
	return New(lang, rules, WithIgnoredCaptures(cfg.IgnoreCaptures...))
}

// NewAdHoc compiles a one-off rule source against the configured
// grammar, for exploratory queries outside the normal rule file.
func NewAdHoc(cfg Config, ruleSource string) (*Engine, error) {
	lang, err := cfg.language()
	if err != nil {
		return nil, err
	}
	return New(lang, ruleSource, WithIgnoredCaptures(cfg.IgnoreCaptures...))
}

// Workers returns the worker count for batch runs: the configured jobs
// value, or one per CPU when unset.
func (c Config) Workers() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}

// CacheDependencies lists the files whose content invalidates cached
// results when it changes.
func (c Config) CacheDependencies() []string {
	var deps []string
	for _, p := range []string{c.Rules, c.NodeTypes, c.Path} {
		if p != "" {
			deps = append(deps, p)
		}
	}
	return deps
}

func (c Config) language() (*tree.Language, error) {
	if c.NodeTypes != "" {
		name := c.Language
		if name == "" {
			name = "org"
		}
		return treeio.ReadLanguage(name, c.NodeTypes)
	}
	switch c.Language {
	case "", "org":
		return org.Language(), nil
	default:
		return nil, fmt.Errorf("unknown language %q and no node-types path", c.Language)
	}
}

func (c Config) ruleSource() (string, error) {
	if c.Rules == "" {
		return org.HighlightRules(), nil
	}
	data, err := treeio.ReadFile(c.Rules)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
