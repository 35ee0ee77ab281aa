package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/cmdgate/adapters/random"
	"github.com/artpar/cmdgate/bootstrap"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the command gateway and introspection API",
	Long: `Start cmdgate with the built-in command set.

The server will:
  - Load configuration from cmdgate.yaml (or --config)
  - Or fall back to CMDGATE_* environment variables and defaults
  - Register the built-in commands (echo, roll, ban, remind)
  - Serve the introspection API: catalog, dry-run validation, metrics

Environment variables (for Docker deployments):
  CMDGATE_PREFIX            - Command prefix (default: !)
  CMDGATE_DATABASE_DRIVER   - Record storage: sqlite or memory
  CMDGATE_DATABASE_DSN      - Database path (default: cmdgate.db)
  CMDGATE_SERVER_PORT       - Server port (default: 8080)
  CMDGATE_ADMIN_TOKEN_HASH  - bcrypt hash guarding dry-run validation
  CMDGATE_LOG_LEVEL         - Log level: debug, info, warn, error

Examples:
  cmdgate serve
  cmdgate serve --config /etc/cmdgate/config.yaml
  cmdgate serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "reload configuration on file change or SIGHUP")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath := ""
	if _, err := os.Stat(cfgFile); err == nil {
		configPath = cfgFile
	} else {
		fmt.Println("Running with environment variables (no config file)")
	}

	app, err := bootstrap.New(bootstrap.Options{
		ConfigPath:    configPath,
		Version:       version,
		Registrations: DemoRegistrations(random.Real{}),
		Watch:         configPath != "" && hotReload,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	// Run (blocks until shutdown)
	return app.Run()
}
