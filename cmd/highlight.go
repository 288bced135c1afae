package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/formatter"
	"github.com/zac-garby/noteboks/highlight"
)

var (
	ignoreCaptures string
	hlJsonOutput   bool
	outPath        string
	noCache        bool
	jobCount       int
	rulesPath      string
	nodeTypesPath  string
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [paths...]",
	Short: "Resolve highlight spans for note dumps",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide dump file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		if jobCount > 0 {
			cfg.Jobs = jobCount
		}
		if rulesPath != "" {
			cfg.Rules = rulesPath
		}
		if nodeTypesPath != "" {
			cfg.NodeTypes = nodeTypesPath
		}

		engine := buildEngine(cfg)

		if ignoreCaptures != "" {
			names := strings.Split(ignoreCaptures, ",")
			for _, name := range names {
				engine.IgnoreCapture(strings.TrimSpace(name))
			}
		}

		processor := highlight.ProcessFile
		if !noCache {
			cache, err := highlight.NewCache(cfg.CacheDir, cfg.CacheDependencies()...)
			if err != nil {
				logger.Warn("Cache unavailable, highlighting without it", zap.Error(err))
			} else {
				processor = highlight.CachedProcessor(cache)
			}
		}

		runHighlightProcess(ctx, logger, engine, args, cfg.Workers(), processor)
	},
}

func init() {
	highlightCmd.Flags().StringVar(&ignoreCaptures, "ignore", "", "Comma-separated list of capture names to drop")
	highlightCmd.Flags().BoolVar(&hlJsonOutput, "json", false, "Output spans in JSON format")
	highlightCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	highlightCmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the span cache")
	highlightCmd.Flags().IntVar(&jobCount, "jobs", 0, "Number of files processed in parallel (default from config)")
	highlightCmd.Flags().StringVar(&rulesPath, "rules", "", "Rule file overriding the configured one")
	highlightCmd.Flags().StringVar(&nodeTypesPath, "node-types", "", "Grammar catalog overriding the configured one")
}

func runHighlightProcess(ctx context.Context, logger *zap.Logger, engine *highlight.Engine, paths []string, workers int, processor highlight.Processor) {
	files, err := highlight.ProcessFiles(ctx, logger, engine, paths, workers, processor)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	printSpans(logger, engine, files, hlJsonOutput, outPath)
}

func printSpans(logger *zap.Logger, engine *highlight.Engine, files []highlight.FileSpans, isJson bool, jsonOutput string) {
	if !isJson {
		// text output
		builder := formatter.NewBuilder(formatter.DefaultTheme(), engine.Language())
		fmt.Print(builder.Generate(files))
		return
	}

	// JSON output
	d, err := formatter.GenerateJSONOutput(files, engine.Language())
	if err != nil {
		logger.Error("Error marshalling spans to JSON", zap.Error(err))
		return
	}
	if jsonOutput == "" {
		fmt.Println(string(d))
		return
	}

	f, err := os.Create(jsonOutput)
	if err != nil {
		logger.Error("Error creating JSON output file", zap.Error(err))
		return
	}
	defer f.Close()
	if _, err := f.Write(d); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}
