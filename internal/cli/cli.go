// Package cli holds the drawsync commands and the wiring they share.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"draw_fetcher/internal/config"
	"draw_fetcher/internal/logging"
	"draw_fetcher/internal/metrics"
	"draw_fetcher/internal/publisher"
	"draw_fetcher/internal/render"
	"draw_fetcher/internal/service"
	"draw_fetcher/internal/source/wingo"
	"draw_fetcher/internal/storage/postgres"
	"draw_fetcher/migrations"
)

const (
	ExitError = 1
)

var flagConfig string

// NewRootCmd creates the root command. Without a subcommand it serves.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawsync",
		Short: "Scrape the latest Wingo draw and keep a deduplicated history",
		Long: `drawsync renders the Wingo draw history page in headless Chrome,
picks the newest finished draw and stores each draw number once.
It runs a minute-aligned scheduler and an HTTP API side by side.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "path to config file")

	cmd.AddCommand(newServeCmd(), newFetchCmd(), newMigrateCmd())

	return cmd
}

// app is everything a command needs to run pipeline cycles.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sqlx.DB
	browser   *render.Browser
	publisher *publisher.RabbitMQ
	draws     *postgres.DrawStore
	states    *postgres.SyncStateStore
	pipeline  *service.Pipeline
	closeLog  func() error
}

func loadConfig() (*config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, closeLog := logging.New(cfg.Log)
	return cfg, logger, closeLog, nil
}

func newApp(reg prometheus.Registerer) (*app, error) {
	cfg, logger, closeLog, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, closeLog: closeLog}

	a.db, err = sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(cfg.Database.URL()); err != nil {
			a.Close()
			return nil, err
		}
		logger.Info("database schema up to date")
	}

	var pub service.Publisher
	if cfg.RabbitMQ.Enabled {
		a.publisher, err = publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		pub = a.publisher
	}

	m := metrics.New(reg)

	a.browser = render.NewBrowser(render.Options{
		Headless:   *cfg.Source.Headless,
		ChromePath: cfg.Source.ChromePath,
		UserAgent:  cfg.Source.UserAgent,
	}, logger)

	source := wingo.New(wingo.Config{
		URL:          cfg.Source.URL,
		Headers:      cfg.Source.Headers,
		CellSelector: cfg.Source.CellSelector,
		NavTimeout:   cfg.Source.NavTimeout,
		MaxAttempts:  cfg.Source.MaxAttempts,
		Backoff:      cfg.Source.Backoff,
		ReadyTimeout: cfg.Source.ReadyTimeout,
		HeaderCells:  cfg.Source.HeaderCells,
	}, a.browser, m, logger)

	a.draws = postgres.NewDrawStore(a.db)
	a.states = postgres.NewSyncStateStore(a.db)
	txManager := postgres.NewTransactionManager(a.db)

	persister := service.NewPersister(a.draws, txManager, logger)
	a.pipeline = service.NewPipeline(source, persister, a.states, pub, m, logger)

	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	if a.browser != nil {
		a.browser.Close()
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close publisher", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", "error", err)
		}
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}
