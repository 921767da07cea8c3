package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alias1177/StockPredictor/models"
)

const insertColumns = `id, symbol, bar_interval, lookback_days, strategy, candles, last_close,
	support, resistance, recommendation, error, created_at`

// sqlRecorder is the journal shared by the Postgres and SQLite backends.
// They differ only in placeholder syntax and DDL.
type sqlRecorder struct {
	db          *sql.DB
	placeholder func(n int) string
	mu          sync.Mutex
	logger      zerolog.Logger
}

func (r *sqlRecorder) Record(ctx context.Context, rec models.AnalysisRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	marks := make([]string, 12)
	for i := range marks {
		marks[i] = r.placeholder(i + 1)
	}
	query := fmt.Sprintf(`INSERT INTO analysis_runs (%s) VALUES (%s)`, insertColumns, strings.Join(marks, ", "))

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Symbol, rec.Interval, rec.LookbackDays, rec.Strategy, rec.Candles, rec.LastClose,
		nullFloat(rec.Support), nullFloat(rec.Resistance), rec.Recommendation, rec.Error,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}

	r.logger.Debug().Str("id", rec.ID).Str("symbol", rec.Symbol).Msg("Analysis recorded")
	return nil
}

// Recent returns the newest records first.
func (r *sqlRecorder) Recent(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM analysis_runs ORDER BY created_at DESC LIMIT %s`, insertColumns, r.placeholder(1)),
		limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis runs: %w", err)
	}
	defer rows.Close()

	var out []models.AnalysisRecord
	for rows.Next() {
		var (
			rec                 models.AnalysisRecord
			support, resistance sql.NullFloat64
		)
		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.Interval, &rec.LookbackDays, &rec.Strategy, &rec.Candles, &rec.LastClose,
			&support, &resistance, &rec.Recommendation, &rec.Error, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		if support.Valid {
			rec.Support = &support.Float64
		}
		if resistance.Valid {
			rec.Resistance = &resistance.Float64
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqlRecorder) Close() error {
	return r.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
