// Package cmd wires the command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agora/internal/config"
	"agora/internal/debuglog"
)

var (
	cfgFile string
	appCfg  *config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "agora",
	Short: "Feed aggregation service",
	Long:  "Polls a roster of publication feeds, caches normalized posts, and serves them over HTTP.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/agora/config.toml, then ./config.toml)")
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	appCfg = cfg

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up logging: %v\n", err)
	}
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() *config.Config {
	return appCfg
}
