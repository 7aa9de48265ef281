// Command importctl runs spreadsheet imports and manages templates and owner
// option lists from the command line, against the same stores as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/crmimport/internal/config"
	_ "github.com/JonMunkholm/crmimport/internal/core/schemas" // Register leads and customers
	"github.com/JonMunkholm/crmimport/internal/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	envFile    string
	driver     string
	sqlitePath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := exitOK
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		code = exitFailure
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
	}
	stop()
	os.Exit(code)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "importctl",
		Short:         "Import leads and customers from CSV and Excel files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", ".env", "Environment file to load if present")
	flags.StringVar(&opts.driver, "driver", "", "Record store: postgres or sqlite (overrides STORE_DRIVER)")
	flags.StringVar(&opts.sqlitePath, "sqlite", "", "SQLite database file (implies --driver sqlite)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (overrides LOG_FORMAT)")

	root.AddCommand(
		newSchemasCmd(opts),
		newTemplateCmd(opts),
		newImportCmd(opts),
		newProfileCmd(opts),
	)
	return root
}

// load reads the environment file and configuration. Flags take precedence
// over environment variables.
func (o *globalOptions) load(cmd *cobra.Command) error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return withCode(exitUsage, fmt.Errorf("load %s: %w", o.envFile, err))
		}
	}

	if cmd.Annotations[noStore] == "true" {
		o.logger = logging.New(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
		slog.SetDefault(o.logger)
		return nil
	}

	overrides := map[string]string{
		"STORE_DRIVER":      o.driver,
		"STORE_SQLITE_PATH": o.sqlitePath,
		"LOG_LEVEL":         o.logLevel,
		"LOG_FORMAT":        o.logFormat,
	}
	if o.sqlitePath != "" && o.driver == "" {
		overrides["STORE_DRIVER"] = config.DriverSQLite
	}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}
	o.cfg = cfg

	o.logger = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(o.logger)
	return nil
}
