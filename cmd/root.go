package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/highlight"
)

var (
	cfgFile string
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "noteboks [paths...]",
	Short:            "noteboks - syntax highlighting for note vault parse dumps",
	TraverseChildren: true, // Prioritize subcommands
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'noteboks' is entered
			_ = cmd.Help()
			return
		}
		// Format: noteboks [path1 path2 ...] => behaves like the highlight subcommand
		highlightCmd.Run(highlightCmd, args)
	},
}

func Execute() error {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Path to the configuration file (default .noteboks.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for the whole run")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(highlightCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(capturesCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
}

// loadConfig resolves the active configuration: the file named by
// --config, else .noteboks.yaml in the working directory, else the
// built-in defaults.
func loadConfig() (highlight.Config, error) {
	if cfgFile != "" {
		return highlight.LoadConfig(cfgFile)
	}

	cfg, err := highlight.LoadConfig(".noteboks.yaml")
	if errors.Is(err, os.ErrNotExist) {
		return highlight.DefaultConfig(), nil
	}
	return cfg, err
}

// buildEngine constructs the highlight engine for cfg, warning about
// rules that failed to compile and dying on anything worse.
func buildEngine(cfg highlight.Config) *highlight.Engine {
	engine, err := highlight.NewFromConfig(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize highlight engine", zap.Error(err))
	}
	for _, d := range engine.Diagnostics() {
		logger.Warn("Rule failed to compile", zap.String("diagnostic", d.String()))
	}
	return engine
}
