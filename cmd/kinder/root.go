package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/kinder/internal/config"
	"github.com/aretw0/kinder/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kinder",
	Short: "Kinder is a matchmaking bot for VK communities",
	Long: `Kinder asks users for search criteria in a private chat, searches the VK
people directory and delivers profiles they have never seen before.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file with KINDER_* variables")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")
}

// loadConfig reads and validates the configuration named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	return logging.NewWithOptions(cfg.Log.Logging())
}
