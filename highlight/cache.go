package highlight

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cacheFileName = "highlight_cache.gob"

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

// cacheFile is the on-disk envelope. Dependency hashes are stored with
// the entries so a rules or catalog edit between runs is caught when
// the cache is reopened.
type cacheFile struct {
	Entries          map[string]CacheEntry
	DependencyHashes map[string]string
}

// CacheEntry is one cached highlight result keyed by the dump file it
// was computed from.
type CacheEntry struct {
	Metadata     fileMetadata
	Spans        []Styled
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache persists highlight results between runs, keyed by file content
// hash. Entries are dropped when the source file, or any dependency
// file (the rule source, the node type catalog, the config), changes.
// The cache is externally invisible: a hit returns exactly what a
// fresh run would produce.
type Cache struct {
	CacheDir string

	entries          map[string]CacheEntry
	mutex            sync.RWMutex
	maxAge           time.Duration
	dependencyFiles  []string
	dependencyHashes map[string]string
}

// NewCache opens (or creates) a cache directory and loads any previous
// entries. dependencies lists files whose content participates in
// validity: when any of them changes, every entry is stale.
func NewCache(cacheDir string, dependencies ...string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:         cacheDir,
		entries:          make(map[string]CacheEntry),
		dependencyFiles:  dependencies,
		dependencyHashes: make(map[string]string),
	}

	stored, err := cache.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	if err := cache.updateDependencyHashes(); err != nil {
		return nil, err
	}

	// A dependency that changed while the cache was closed stales
	// every entry.
	for _, file := range dependencies {
		if stored[file] != cache.dependencyHashes[file] {
			cache.entries = make(map[string]CacheEntry)
			break
		}
	}
	return cache, nil
}

func (c *Cache) load() (map[string]string, error) {
	file, err := os.Open(filepath.Join(c.CacheDir, cacheFileName))
	if os.IsNotExist(err) {
		return nil, nil // no cache yet
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	var stored cacheFile
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}
	if stored.Entries != nil {
		c.entries = stored.Entries
	}
	return stored.DependencyHashes, nil
}

func (c *Cache) save() error {
	file, err := os.Create(filepath.Join(c.CacheDir, cacheFileName))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(cacheFile{
		Entries:          c.entries,
		DependencyHashes: c.dependencyHashes,
	}); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Set stores the highlight result for a file and persists the cache.
func (c *Cache) Set(filename string, spans []Styled) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	metadata, err := getFileMetadata(filename)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.entries[filename] = CacheEntry{
		Metadata:     metadata,
		Spans:        spans,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}
	return c.save()
}

// Get returns the cached result for a file, if it is still valid.
func (c *Cache) Get(filename string) ([]Styled, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return nil, false
	}

	if c.isEntryInvalid(filename, entry) {
		delete(c.entries, filename)
		return nil, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Spans, true
}

func (c *Cache) isEntryInvalid(filename string, entry CacheEntry) bool {
	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		return true
	}

	currentMetadata, err := getFileMetadata(filename)
	if err != nil || currentMetadata != entry.Metadata {
		return true
	}

	return c.haveDependenciesChanged()
}

func (c *Cache) haveDependenciesChanged() bool {
	for _, file := range c.dependencyFiles {
		hash, err := getFileHash(file)
		if err != nil {
			return true
		}
		if hash != c.dependencyHashes[file] {
			return true
		}
	}
	return false
}

func (c *Cache) updateDependencyHashes() error {
	for _, file := range c.dependencyFiles {
		hash, err := getFileHash(file)
		if err != nil {
			return fmt.Errorf("failed to get hash for %s: %w", file, err)
		}
		c.dependencyHashes[file] = hash
	}
	return nil
}

// SetMaxAge bounds how long entries stay valid. Zero (the default)
// means no age limit.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

// InvalidateAll drops every entry and persists the empty cache.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // manual operation, best effort
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}

func getFileHash(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}
