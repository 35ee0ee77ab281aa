package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/cmdgate/config"
	"github.com/artpar/cmdgate/core/formatter"
)

var commandsOutput string

var commandsCmd = &cobra.Command{
	Use:   "commands [name]",
	Short: "Print the built-in command catalog",
	Long: `Print the built-in command catalog, or one command's full help.

Examples:
  cmdgate commands
  cmdgate commands ban
  cmdgate commands -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)

	commandsCmd.Flags().StringVarP(&commandsOutput, "output", "o", "text", "output format: text, json, yaml")
}

func runCommands(cmd *cobra.Command, args []string) error {
	f, ok := formatter.Get(commandsOutput)
	if !ok {
		return fmt.Errorf("unknown output format %q (have: %s)",
			commandsOutput, strings.Join(formatter.List(), ", "))
	}

	// Only the prefix matters here; a missing file falls back to
	// environment variables and defaults.
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return err
	}

	reg, err := demoRegistry()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		def, ok := reg.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown command %q", args[0])
		}
		return f.FormatCommand(os.Stdout, cfg.Prefix, def, formatter.FormatOptions{})
	}

	return f.FormatCommands(os.Stdout, cfg.Prefix, reg.List(), formatter.FormatOptions{})
}
