package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// NewSQLiteRecorder opens (or creates) the SQLite journal and runs migrations.
func NewSQLiteRecorder(ctx context.Context, path string) (Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id             TEXT PRIMARY KEY,
			symbol         TEXT NOT NULL,
			bar_interval   TEXT NOT NULL,
			lookback_days  INTEGER NOT NULL,
			strategy       TEXT NOT NULL,
			candles        INTEGER NOT NULL,
			last_close     REAL,
			support        REAL,
			resistance     REAL,
			recommendation TEXT NOT NULL DEFAULT '',
			error          TEXT NOT NULL DEFAULT '',
			created_at     DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_runs_created ON analysis_runs(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	log.Info().Str("path", path).Msg("SQLite journal opened")
	return &sqlRecorder{
		db:          db,
		placeholder: func(int) string { return "?" },
		logger:      log.With().Str("component", "journal").Str("driver", "sqlite").Logger(),
	}, nil
}
