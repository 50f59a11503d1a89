// Package cli implements the splitsmart command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsmart/internal/config"
	"github.com/mmynk/splitsmart/internal/metrics"
	"github.com/mmynk/splitsmart/internal/service"
	"github.com/mmynk/splitsmart/internal/storage/sqlite"
	"github.com/mmynk/splitsmart/pkg/logging"
)

// app carries the state shared by every command of one invocation.
type app struct {
	configFile string
	dbPath     string
	logLevel   string

	cfg     *config.Config
	store   *sqlite.SQLiteStore
	metrics *metrics.Recorder
	svc     *service.LedgerService
}

// Run executes the command line given by args.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "splitsmart",
		Short:         "Track shared expenses and settle group debts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: search $HOME/.splitsmart, .splitsmart and .)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (overrides storage.path)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	root.AddCommand(
		a.userCommand(),
		a.groupCommand(),
		a.expenseCommand(),
		a.settleCommand(),
		a.debtsCommand(),
		a.balancesCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.serveCommand(),
		a.tokenCommand(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Storage.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.SetupWithLevel(level)

	store, err := sqlite.New(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	slog.Debug("Storage initialized", "database", cfg.Storage.Path)

	a.cfg = cfg
	a.store = store
	a.metrics = metrics.New()
	a.svc = service.NewLedgerService(store, service.WithMetrics(a.metrics))
	return nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close storage", "error", err)
	}
}
