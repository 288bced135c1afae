// Package treeio loads the serialized artifacts a vault is built from:
// node type catalogs (node-types.json) and parse tree dumps produced by
// an external grammar. Dumps may be stored compressed; readers pick the
// codec from the file extension.
package treeio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdOnce sync.Once
	zstdDec  *zstd.Decoder
	zstdErr  error
)

func zstdDecoder() (*zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdDec, zstdErr = zstd.NewReader(nil)
	})
	return zstdDec, zstdErr
}

// ReadFile reads a vault artifact, transparently decompressing .zst and
// .gz payloads.
func ReadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch filepath.Ext(path) {
	case ".zst":
		dec, err := zstdDecoder()
		if err != nil {
			return nil, err
		}
		data, err := dec.DecodeAll(raw, nil)
		if err != nil {
			return nil, fmt.Errorf("treeio: decompress %s: %w", path, err)
		}
		return data, nil

	case ".gz":
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("treeio: decompress %s: %w", path, err)
		}
		defer zr.Close()
		data, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("treeio: decompress %s: %w", path, err)
		}
		return data, nil

	default:
		return raw, nil
	}
}
