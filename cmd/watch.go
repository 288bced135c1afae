package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/highlight"
)

// watchCmd: noteboks watch
var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-highlight note dumps as they change",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide directory paths")
			os.Exit(1)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine := buildEngine(cfg)

		processor := highlight.ProcessFile
		if cache, err := highlight.NewCache(cfg.CacheDir, cfg.CacheDependencies()...); err != nil {
			logger.Warn("Cache unavailable, highlighting without it", zap.Error(err))
		} else {
			processor = highlight.CachedProcessor(cache)
		}

		watcher, err := highlight.NewWatcher(engine, logger, processor, func(file highlight.FileSpans) {
			printSpans(logger, engine, []highlight.FileSpans{file}, false, "")
		})
		if err != nil {
			logger.Fatal("Failed to initialize watcher", zap.Error(err))
		}

		for _, path := range args {
			if err := watcher.Add(path); err != nil {
				logger.Fatal("Failed to watch path", zap.String("path", path), zap.Error(err))
			}
		}

		logger.Info("Watching for changes", zap.Strings("paths", args))
		if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Watcher stopped", zap.Error(err))
			os.Exit(1)
		}
	},
}
