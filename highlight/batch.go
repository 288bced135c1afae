package highlight

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/scanner"
)

// FileSpans pairs a dump file with its resolved highlight spans.
type FileSpans struct {
	Path  string
	Spans []Styled
}

// Processor turns one dump file into highlight spans. The default is
// ProcessFile; CachedProcessor wraps it with a result cache.
type Processor func(*Engine, string) ([]Styled, error)

// ProcessFile highlights a single dump file.
func ProcessFile(engine *Engine, path string) ([]Styled, error) {
	return engine.RunFile(path)
}

// CachedProcessor returns a Processor that consults the cache before
// running the engine and stores fresh results afterwards. A failure to
// persist is not fatal; the spans are still returned.
func CachedProcessor(cache *Cache) Processor {
	return func(engine *Engine, path string) ([]Styled, error) {
		if spans, ok := cache.Get(path); ok {
			return spans, nil
		}
		spans, err := ProcessFile(engine, path)
		if err != nil {
			return nil, err
		}
		_ = cache.Set(path, spans)
		return spans, nil
	}
}

// ProcessFiles processes every given path (files or directories) and
// returns the per-file results sorted by path.
func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine *Engine,
	paths []string,
	workers int,
	processor Processor,
) ([]FileSpans, error) {
	var all []FileSpans
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, workers, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, results...)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })
	return all, nil
}

// ProcessPath processes one path. Directories are scanned for dump
// files and processed on a bounded worker pool with a progress bar;
// a single file is processed inline. Per-file failures are logged and
// skipped so one broken dump cannot take the run down.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine *Engine,
	path string,
	workers int,
	processor Processor,
) ([]FileSpans, error) {
	if processor == nil {
		processor = ProcessFile
	}
	if workers < 1 {
		workers = 1
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !scanner.IsDumpFile(path) {
			return nil, nil
		}
		spans, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []FileSpans{{Path: path, Spans: spans}}, nil
	}

	files, err := scanner.Scan(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	resultChan := make(chan fileResult, len(files))

	sem := make(chan struct{}, workers)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	spawned := 0
	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		spawned++
		go func(fp string) {
			defer func() { <-sem }()

			spans, err := processor(engine, fp)
			resultChan <- fileResult{path: fp, spans: spans, err: err}
			_ = bar.Add(1)
		}(filePath)
	}

	var results []FileSpans
	for i := 0; i < spawned; i++ {
		res := <-resultChan
		if res.err != nil {
			if logger != nil {
				logger.Error("Error processing file", zap.String("file", res.path), zap.Error(res.err))
			}
			continue
		}
		results = append(results, FileSpans{Path: res.path, Spans: res.spans})
	}

	fmt.Println()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

type fileResult struct {
	path  string
	spans []Styled
	err   error
}
