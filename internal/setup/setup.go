package setup

import (
	"context"

	"github.com/rosterpulse/rosterpulse/internal/setup/config"
	"github.com/rosterpulse/rosterpulse/internal/socialblade"
	"github.com/rosterpulse/rosterpulse/internal/storage"
	"github.com/rosterpulse/rosterpulse/internal/storage/bigquery"
	"github.com/rosterpulse/rosterpulse/internal/storage/csvfile"
	"go.uber.org/zap"
)

// App bundles the dependencies shared by every collector command.
type App struct {
	Config *config.Config      // Application configuration
	Logger *zap.Logger         // Main application logger
	Sink   storage.Sink        // Active persistence backend
	Client *socialblade.Client // Metrics provider client
}

// InitializeApp bootstraps configuration, logging, the persistence sink and
// the metrics client. The sink is selected once here: BigQuery by default,
// local CSV files when devMode is set.
func InitializeApp(ctx context.Context, devMode bool) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Missing required configuration is fatal before any processing starts
	if err := cfg.Validate(devMode); err != nil {
		return nil, err
	}

	logger, err := NewLogger(&cfg.Debug)
	if err != nil {
		return nil, err
	}

	var sink storage.Sink

	if devMode {
		logger.Info("Running in development mode", zap.String("outputDir", cfg.Dev.OutputDir))

		sink, err = csvfile.New(cfg.Dev.OutputDir, logger)
	} else {
		sink, err = bigquery.New(ctx, &cfg.BigQuery, logger)
	}

	if err != nil {
		return nil, err
	}

	client := socialblade.NewClient(&cfg.SocialBlade, &cfg.Retry, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		Sink:   sink,
		Client: client,
	}, nil
}

// Cleanup releases the sink and flushes buffered logs. Cleanup errors are
// logged but never fail the run.
func (a *App) Cleanup() {
	if err := a.Sink.Close(); err != nil {
		a.Logger.Error("Failed to close sink", zap.Error(err))
	}

	_ = a.Logger.Sync()
}
