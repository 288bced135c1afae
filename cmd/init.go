package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/zac-garby/noteboks/highlight"
)

// initCmd: noteboks init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new vault configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := initConfigurationFile(cfgFile)
		if err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", path)
	},
}

// initConfigurationFile writes the built-in defaults as a yaml file
// and returns the path it wrote.
func initConfigurationFile(configurationPath string) (string, error) {
	if configurationPath == "" {
		configurationPath = ".noteboks.yaml"
	}

	config := highlight.DefaultConfig()
	d, err := yaml.Marshal(config)
	if err != nil {
		return "", err
	}

	f, err := os.Create(configurationPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(d); err != nil {
		return "", err
	}

	return configurationPath, nil
}
