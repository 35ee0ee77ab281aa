package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/cmdgate/core/formatter"
	"github.com/artpar/cmdgate/core/validation"
)

var (
	validateCommand string
	validateOutput  string
)

var validateCmd = &cobra.Command{
	Use:   "validate -c <command> [--] [args...]",
	Short: "Dry-run a command line against its schema",
	Long: `Validate arguments against a built-in command schema without
dispatching.

The arguments are joined and run through the same tokenizer, validator
and coercers the dispatcher uses, and every problem is reported, not
just the first. Exits non-zero when the input is invalid.

Examples:
  cmdgate validate -c echo -- hello
  cmdgate validate -c ban -- '<@42>' 3 yes
  cmdgate validate -c remind -o json -- 10m standup`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateCommand, "command", "c", "", "command name or alias to validate against")
	validateCmd.Flags().StringVarP(&validateOutput, "output", "o", "text", "output format: text, json, yaml")
	validateCmd.MarkFlagRequired("command")
}

func runValidate(cmd *cobra.Command, args []string) error {
	f, ok := formatter.Get(validateOutput)
	if !ok {
		return fmt.Errorf("unknown output format %q (have: %s)",
			validateOutput, strings.Join(formatter.List(), ", "))
	}

	reg, err := demoRegistry()
	if err != nil {
		return err
	}

	def, ok := reg.Lookup(validateCommand)
	if !ok {
		return fmt.Errorf("unknown command %q", validateCommand)
	}

	result := validation.Validate(def, strings.Join(args, " "))

	if err := f.FormatResult(os.Stdout, result, formatter.FormatOptions{}); err != nil {
		return err
	}

	if !result.OK() {
		os.Exit(1)
	}
	return nil
}
