package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/pious/internal/config"
	"github.com/aretw0/pious/internal/logging"
	"github.com/spf13/cobra"
)

var (
	appConfig config.Config
	logger    = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "pious",
	Short: "Pious drives PioSOLVER and works with its lines",
	Long: `Pious talks to a PioSOLVER process over its text protocol, parses the
betting lines of solved trees and serves both over HTTP and MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		appConfig = cfg

		levelName, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(levelName)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default ~/.config/pious/pious.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Append the engine command log to this file")
}
