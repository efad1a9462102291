// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the clause-classifier CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/clause-classifier/internal/logging"
	"github.com/pdiddy/clause-classifier/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Populated by the root command before any subcommand runs.
var (
	cfg    = types.DefaultConfig()
	logger = logging.NewNop()
)

// rootCmd is the base command for the clause-classifier CLI.
var rootCmd = &cobra.Command{
	Use:   "clause-classifier",
	Short: "Classify provider contract clauses as Standard or Non-Standard",
	Long: `clause-classifier compares the clauses of provider contracts against the
standard template of their market and labels each one Standard or
Non-Standard.

The workflow is a pipeline of subcommands: extract finds the clause for each
attribute in contract and template documents, classify scores every clause
against its template and applies the rule policy, and report and history
read the results back.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags()); err != nil {
			return err
		}
		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./clause-classifier.yaml or ~/.config/clause-classifier/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().Bool("log-dev", false, "human-readable console logs")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("clause-classifier")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "clause-classifier"))
		}
	}

	viper.SetEnvPrefix("CLAUSE_CLASSIFIER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
