package highlight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/scanner"
)

// Watcher re-runs the highlight pipeline whenever a dump under one of
// the watched roots is written. Events are handled one at a time, in
// arrival order.
type Watcher struct {
	engine    *Engine
	logger    *zap.Logger
	processor Processor
	watcher   *fsnotify.Watcher
	onSpans   func(FileSpans)

	// settle is how long a changed file gets to stop moving before it
	// is re-read; editors fire several events per save.
	settle time.Duration
}

// NewWatcher wires a filesystem watcher to engine. Each re-highlighted
// file is passed to onSpans. A nil processor means ProcessFile.
func NewWatcher(engine *Engine, logger *zap.Logger, processor Processor, onSpans func(FileSpans)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if processor == nil {
		processor = ProcessFile
	}
	return &Watcher{
		engine:    engine,
		logger:    logger,
		processor: processor,
		watcher:   fw,
		onSpans:   onSpans,
		settle:    100 * time.Millisecond,
	}, nil
}

// Add registers root and every directory below it, skipping hidden
// directories the same way vault scans do.
func (w *Watcher) Add(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Watch blocks, dispatching change events until ctx is done or the
// event stream closes. The underlying watcher is released on return.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		// directories created under a watched root join the watch set
		if event.Op&fsnotify.Create != 0 {
			if err := w.Add(event.Name); err != nil {
				w.logger.Error("Error watching new directory", zap.String("dir", event.Name), zap.Error(err))
			}
		}
		return
	}
	if !scanner.IsDumpFile(event.Name) {
		return
	}

	time.Sleep(w.settle)

	spans, err := w.processor(w.engine, event.Name)
	if err != nil {
		w.logger.Error("Error processing file", zap.String("file", event.Name), zap.Error(err))
		return
	}

	w.logger.Info("Highlighted file", zap.String("file", event.Name), zap.Int("spans", len(spans)))
	if w.onSpans != nil {
		w.onSpans(FileSpans{Path: event.Name, Spans: spans})
	}
}
