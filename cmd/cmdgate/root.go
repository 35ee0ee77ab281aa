package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cmdgate",
	Short: "Chat command gateway with declarative schemas and validating dispatch",
	Long: `cmdgate routes chat command lines to handlers.

Commands are declared once with a builder (option types, bounds,
choices, aliases) and every incoming line is tokenized, validated and
coerced against that declaration before its handler runs. Bad input
comes back as a reply listing every problem, never a panic.

Quick start:
  cmdgate repl      # Try the built-in commands interactively
  cmdgate serve     # Start the gateway and introspection API

Tools:
  cmdgate commands  # Print the command catalog
  cmdgate validate  # Dry-run a command line against its schema`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Long-only: -c belongs to `validate --command`.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "cmdgate.yaml", "config file path")
}
