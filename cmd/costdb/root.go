package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"costdb/database"
	"costdb/internal/config"
	"costdb/internal/logging"
	"costdb/storage"
)

// version задается при сборке через -ldflags
var version = "dev"

// app общее состояние команд: конфигурация и логгер
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "costdb",
		Short: "Procurement cost intelligence pipeline",
		Long: `costdb standardizes free-text purchase order descriptions into canonical items,
aggregates price statistics per item and region, and flags orders whose unit price
deviates from the expected price.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.Version = version
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to YAML config file")

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newValidateCmd(a),
		newGenerateCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	// Логи идут в stderr, stdout остается для сводок
	a.logger = logging.Init(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	return nil
}

func (a *app) store() *storage.Store {
	return storage.NewStore(a.cfg.Paths.RawFile, a.cfg.Paths.ProcessedDir)
}

// openRegistry открывает SQLite реестр; nil, если реестр выключен
func (a *app) openRegistry() (*database.RegistryDB, error) {
	if !a.cfg.Registry.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(dirOf(a.cfg.Registry.DatabasePath), 0o755); err != nil {
		return nil, err
	}
	return database.NewRegistryDBWithConfig(a.cfg.Registry.DatabasePath, database.DBConfig{
		MaxOpenConns:    a.cfg.Registry.MaxOpenConns,
		MaxIdleConns:    a.cfg.Registry.MaxIdleConns,
		ConnMaxLifetime: a.cfg.Registry.ConnMaxLifetime,
	})
}
