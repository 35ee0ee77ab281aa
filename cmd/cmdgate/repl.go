package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/cmdgate/adapters/random"
	"github.com/artpar/cmdgate/bootstrap"
	"github.com/artpar/cmdgate/core/channel/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive shell",
	Long: `Start an interactive shell wired to the built-in command set.

Typed lines travel the full dispatch pipeline: prefix gate, cooldown,
tokenization, validation, handler. Useful for trying schemas before
connecting a chat platform.

Examples:
  cmdgate repl

Interactive commands:
  help [command]       Show builtins, or one command's usage
  commands             List registered commands
  author <name>        Change the simulated author
  !<command> [args]    Dispatch a command (prefix from config)
  quit                 Exit the shell`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, args []string) error {
	configPath := ""
	if _, err := os.Stat(cfgFile); err == nil {
		configPath = cfgFile
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath:    configPath,
		Version:       version,
		Registrations: DemoRegistrations(random.Real{}),
	})
	if err != nil {
		return err
	}
	defer app.Shutdown()

	// Keep log noise out of the prompt
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	ch := repl.New(app.Dispatcher, app.Registry, os.Stdin, os.Stdout)
	return ch.Run(context.Background())
}
