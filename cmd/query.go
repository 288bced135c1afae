package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/highlight"
)

var queryOutPath string

var queryCmd = &cobra.Command{
	Use:   "query <pattern> [paths...]",
	Short: "Run an ad-hoc pattern over note dumps",
	Long: `Compiles a single pattern against the configured grammar and prints
the spans it captures as JSON.
Example) noteboks query '((headline item: (item) @todo) (#match? @todo "^TODO"))' notes/`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			fmt.Println("error: Please provide a pattern and dump file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		runAdHocQuery(ctx, logger, cfg, args[0], args[1:])
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryOutPath, "output", "o", "", "Output path for the JSON spans")
}

func runAdHocQuery(ctx context.Context, logger *zap.Logger, cfg highlight.Config, pattern string, paths []string) {
	engine, err := highlight.NewAdHoc(cfg, pattern)
	if err != nil {
		logger.Fatal("Failed to initialize highlight engine", zap.Error(err))
	}

	if diags := engine.Diagnostics(); len(diags) > 0 {
		for _, d := range diags {
			fmt.Println(d.String())
		}
		os.Exit(1)
	}

	files, err := highlight.ProcessFiles(ctx, logger, engine, paths, cfg.Workers(), highlight.ProcessFile)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	printSpans(logger, engine, files, true, queryOutPath)
}
