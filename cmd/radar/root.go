package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rock-radar/internal/config"
	"github.com/rock-radar/internal/domain/repository"
	"github.com/rock-radar/internal/pkg/logger"
	"github.com/rock-radar/internal/repository/file"
	"github.com/rock-radar/internal/repository/postgres"
)

// globalOptions - флаги, общие для всех команд
type globalOptions struct {
	envFile  string
	logLevel string
	source   string
	dataDir  string
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "radar",
		Short: "Rank climbing areas and routes",
		Long: `radar builds the area tree from route records (JSON files or PostgreSQL),
applies a route filter and a ranking model and prints one level of the tree.`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env", ".env", "Config file with RADAR_*, DB_* variables")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	flags.StringVar(&opts.source, "source", "", "Route source: file|postgres (default from config)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Directory with region JSON files (default from config)")

	root.AddCommand(
		newRankCmd(opts),
		newRegionsCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// env - загруженная конфигурация, логгер и источник маршрутов
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	repo  repository.RouteRepository
	close func()
}

func (o *globalOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFrom(o.envFile)
	if err != nil {
		return nil, nil, err
	}
	if o.source != "" {
		cfg.Radar.Source = o.source
	}
	if o.dataDir != "" {
		cfg.Radar.DataDir = o.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.NewCLI(o.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// open загружает конфигурацию и открывает источник маршрутов
func (o *globalOptions) open(ctx context.Context) (*env, error) {
	cfg, log, err := o.load()
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log, close: func() { _ = log.Sync() }}
	if cfg.Radar.Source != config.SourcePostgres {
		e.repo = file.NewRouteRepository(cfg.Radar.DataDir, log)
		return e, nil
	}

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	e.repo = postgres.NewRouteRepository(db, log)
	e.close = func() {
		_ = db.Close()
		_ = log.Sync()
	}
	return e, nil
}

func openDB(ctx context.Context, cfg *config.Config, log *zap.Logger) (*postgres.DB, error) {
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return db, nil
}
