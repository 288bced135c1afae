package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zac-garby/noteboks/highlight"
)

// checkCmd: noteboks check
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Compile the configured rules and report diagnostics",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine, err := highlight.NewFromConfig(cfg)
		if err != nil {
			logger.Fatal("Failed to initialize highlight engine", zap.Error(err))
		}

		diags := engine.Diagnostics()
		if len(diags) == 0 {
			fmt.Printf("%d rules compiled cleanly\n", engine.Query().RuleCount())
			return
		}

		for _, d := range diags {
			fmt.Println(d.String())
		}
		os.Exit(1)
	},
}
