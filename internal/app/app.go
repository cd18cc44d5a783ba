// Package app initializes and holds the long-lived services shared by the
// CLI commands.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/liveatlas/setlist-crawler/internal/config"
	"github.com/liveatlas/setlist-crawler/internal/logging"
	"github.com/liveatlas/setlist-crawler/internal/store"
)

// App holds the configured logger and repository.
type App struct {
	Config config.Config
	Logger *zap.Logger
	Store  *store.Postgres
}

// New builds the service container: logger first, then the database pool.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	repo, err := store.NewPostgres(ctx, store.PostgresConfig{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info("application services initialized")
	return &App{
		Config: cfg,
		Logger: logger,
		Store:  repo,
	}, nil
}

// Close releases held resources.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Store != nil {
		a.Store.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}
