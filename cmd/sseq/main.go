// SPDX-License-Identifier: MIT

// Command sseq resolves modules over the Steenrod algebra and prints their
// Ext charts, products and Massey products.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/sseq/config"
)

var (
	configPath  string
	verbose     bool
	development bool

	// fileConfig is the configuration file, or the defaults without one.
	fileConfig config.Config
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sseq",
	Short: "Minimal free resolutions over the Steenrod algebra",
	Long: `sseq computes Ext over the mod p Steenrod algebra by building a minimal
free resolution of a module, bidegree by bidegree.

Modules are named like S_2, C2@adem or Joker[3], or given as a path to a
JSON or YAML module specification.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		fileConfig = config.Default()
		if configPath != "" {
			var err error
			if fileConfig, err = config.Load(configPath); err != nil {
				return err
			}
		}
		lc := fileConfig.Log
		if verbose {
			lc.Level = "debug"
		}
		if development {
			lc.Development = true
		}
		var err error
		logger, err = config.NewLogger(lc)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML run configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&development, "dev", false, "Human-readable log output")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(masseyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
