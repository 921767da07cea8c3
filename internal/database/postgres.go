package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds a lib/pq key/value connection string.
func (p ConnectionParams) DSN() string {
	port := p.Port
	if port == "" {
		port = "5432"
	}
	sslMode := p.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, port, p.User, p.Password, p.DBName, sslMode,
	)
}

// NewPostgres connects to PostgreSQL using discrete parameters.
func NewPostgres(ctx context.Context, params ConnectionParams) (Recorder, error) {
	return OpenPostgres(ctx, params.DSN())
}

// OpenPostgres connects with a DSN and creates the journal table if needed.
func OpenPostgres(ctx context.Context, dsn string) (Recorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id             TEXT PRIMARY KEY,
			symbol         TEXT NOT NULL,
			bar_interval   TEXT NOT NULL,
			lookback_days  INTEGER NOT NULL,
			strategy       TEXT NOT NULL,
			candles        INTEGER NOT NULL,
			last_close     DOUBLE PRECISION,
			support        DOUBLE PRECISION,
			resistance     DOUBLE PRECISION,
			recommendation TEXT NOT NULL DEFAULT '',
			error          TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create analysis_runs: %w", err)
	}

	log.Info().Msg("Postgres journal ready")
	return &sqlRecorder{
		db:          db,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		logger:      log.With().Str("component", "journal").Str("driver", "postgres").Logger(),
	}, nil
}
