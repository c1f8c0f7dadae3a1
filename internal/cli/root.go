// Package cli implements the hotelcrm command-line interface. Commands print
// JSON on stdout; logs go to stderr.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/hotelcrm/internal/attachments"
	"github.com/mesh-intelligence/hotelcrm/internal/dispatch"
	"github.com/mesh-intelligence/hotelcrm/internal/logging"
	"github.com/mesh-intelligence/hotelcrm/internal/paths"
	"github.com/mesh-intelligence/hotelcrm/internal/sqlite"
	"github.com/mesh-intelligence/hotelcrm/internal/stats"
	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errFailed marks a failure already reported on stdout as an envelope.
var errFailed = errors.New("operation failed")

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	logLevel  string
}

var flags rootFlags

// NewRootCmd creates the top-level "hotelcrm" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hotelcrm",
		Short: "Hotel brokerage CRM",
		Long: "hotelcrm keeps sellers, properties, buyers, deals, and activities of a\n" +
			"hotel brokerage agency in a local SQLite database.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $"+paths.EnvConfigDir+" or the user config dir)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: working dir in development, user data dir in production)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log_level from config.yaml")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newMigrateCmd(),
		newCallCmd(),
		newStatsCmd(),
		newStaleCmd(),
		newIncarichiCmd(),
		newAttachCmd(),
		newExportCmd(),
		newImportCmd(),
		newReportCmd(),
		newSeedCmd(),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		var se sysError
		if errors.As(err, &se) {
			os.Exit(exitSysError)
		}
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}

// sysError marks failures of the environment (config, database, disk) as
// opposed to bad input.
type sysError struct{ err error }

func (e sysError) Error() string { return e.err.Error() }
func (e sysError) Unwrap() error { return e.err }

// app is the opened runtime shared by a command: config, logger, and the
// database with the services over it.
type app struct {
	config      types.Config
	logger      *zap.Logger
	backend     *sqlite.Backend
	stats       *stats.Service
	attachments *attachments.Store
	dispatcher  *dispatch.Dispatcher
}

// loadRuntimeConfig resolves the config directory, reads config.yaml, and
// applies the flags.
func loadRuntimeConfig() (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return types.Config{}, sysError{fmt.Errorf("resolve config dir: %w", err)}
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, sysError{err}
	}
	if flags.logLevel != "" {
		v.Set(cfgKeyLogLevel, flags.logLevel)
	}
	cfg, err := buildConfig(v, flags.dataDir)
	if err != nil {
		return types.Config{}, sysError{err}
	}
	return cfg, nil
}

// openApp loads the configuration and opens the database. The caller must
// call close.
func openApp() (*app, error) {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, sysError{fmt.Errorf("build logger: %w", err)}
	}

	backend := sqlite.NewBackend(sqlite.WithLogger(logger))
	if _, err := backend.Open(cfg); err != nil {
		logger.Sync()
		return nil, sysError{fmt.Errorf("open database: %w", err)}
	}

	svc := stats.New(backend, stats.WithClock(backend.Now), stats.WithLogger(logger))
	files := attachments.New(cfg.AttachmentsPath(), backend, attachments.WithLogger(logger))
	return &app{
		config:      cfg,
		logger:      logger,
		backend:     backend,
		stats:       svc,
		attachments: files,
		dispatcher: dispatch.New(backend,
			dispatch.WithLogger(logger),
			dispatch.WithStats(svc),
			dispatch.WithAttachments(files),
			dispatch.WithStaleDays(cfg.StaleDays),
		),
	}, nil
}

func (a *app) close() {
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("closing database", zap.Error(err))
	}
	a.logger.Sync()
}

// withApp opens the runtime, runs fn, and closes it.
func withApp(fn func(a *app) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResponse writes the envelope and turns a failed call into errFailed.
func printResponse(w io.Writer, resp dispatch.Response) error {
	if err := printJSON(w, resp); err != nil {
		return err
	}
	if !resp.Success {
		return errFailed
	}
	return nil
}

// respond wraps a direct result in the same envelope the dispatcher uses.
func respond(w io.Writer, data any, err error) error {
	if err != nil {
		return printResponse(w, dispatch.Response{Error: &dispatch.Error{
			Code:    "COMMAND_ERROR",
			Message: err.Error(),
		}})
	}
	return printResponse(w, dispatch.Response{Success: true, Data: data})
}
