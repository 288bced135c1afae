// Package scanner discovers tree dump files under a vault directory.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DumpSuffixes lists the file endings recognised as tree dumps.
var DumpSuffixes = []string{".json", ".json.zst", ".json.gz"}

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir  string
	suffixes []string
}

// New returns a scanner rooted at rootDir. With no explicit suffixes it
// looks for the standard dump endings.
func New(rootDir string, suffixes ...string) *Scanner {
	if len(suffixes) == 0 {
		suffixes = DumpSuffixes
	}
	return &Scanner{
		rootDir:  rootDir,
		suffixes: suffixes,
	}
}

// Scan walks the root and returns every matching file sorted by path.
// Hidden directories (cache dirs, .git) are skipped.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.Walk(s.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != s.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isTargetFile(path) {
			files = append(files, FileInfo{
				Path: path,
				Size: info.Size(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) isTargetFile(path string) bool {
	for _, suffix := range s.suffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// IsDumpFile reports whether path has one of the standard dump endings.
func IsDumpFile(path string) bool {
	for _, suffix := range DumpSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// Scan returns the dump file paths under root sorted by path.
func Scan(root string) ([]string, error) {
	infos, err := New(root).Scan()
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(infos))
	for i, fi := range infos {
		paths[i] = fi.Path
	}
	return paths, nil
}
