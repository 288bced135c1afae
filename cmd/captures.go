package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// capturesCmd: noteboks captures
var capturesCmd = &cobra.Command{
	Use:   "captures",
	Short: "List the capture names the configured rules can emit",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}

		engine := buildEngine(cfg)
		for _, name := range engine.Query().CaptureNames() {
			fmt.Println(name)
		}
	},
}
