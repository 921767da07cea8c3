package database

import (
	"context"
	"fmt"

	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/models"
)

// Recorder journals finished analyses. Journal failures never abort an
// analysis; callers log them and carry on.
type Recorder interface {
	Record(ctx context.Context, rec models.AnalysisRecord) error
	Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	Close() error
}

// New opens the journal selected by cfg.Database.Driver. An empty driver
// yields a NoopRecorder.
func New(ctx context.Context, cfg *config.Config) (Recorder, error) {
	switch cfg.Database.Driver {
	case "":
		return NewNoopRecorder(), nil
	case "postgres":
		if cfg.Database.DSN != "" {
			return OpenPostgres(ctx, cfg.Database.DSN)
		}
		return NewPostgres(ctx, ConnectionParams{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
		})
	case "sqlite":
		path := cfg.Database.DSN
		if path == "" {
			path = "analysis_journal.db"
		}
		return NewSQLiteRecorder(ctx, path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
