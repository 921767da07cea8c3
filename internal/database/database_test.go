package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Alias1177/StockPredictor/internal/config"
	"github.com/Alias1177/StockPredictor/models"
)

func TestSQLiteRecorderRoundTrip(t *testing.T) {
	ctx := context.Background()
	rec, err := NewSQLiteRecorder(ctx, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	support := 63500.75
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, rec.Record(ctx, models.AnalysisRecord{
		ID: "run-1", Symbol: "BTC-USD", Interval: "5m", LookbackDays: 3, Strategy: "extrema",
		Candles: 864, LastClose: 64250.5, Support: &support,
		Recommendation: "Decision: Hold", CreatedAt: base,
	}))
	require.NoError(t, rec.Record(ctx, models.AnalysisRecord{
		ID: "run-2", Symbol: "AAPL", Interval: "1h", LookbackDays: 5, Strategy: "fibonacci",
		Candles: 35, LastClose: 189.3, Error: "openai: timeout", CreatedAt: base.Add(time.Minute),
	}))

	got, err := rec.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "run-2", got[0].ID)
	require.Equal(t, "openai: timeout", got[0].Error)
	require.Nil(t, got[0].Support)

	require.Equal(t, "run-1", got[1].ID)
	require.Equal(t, "5m", got[1].Interval)
	require.Equal(t, 864, got[1].Candles)
	require.NotNil(t, got[1].Support)
	require.Equal(t, support, *got[1].Support)
	require.Nil(t, got[1].Resistance)
	require.True(t, base.Equal(got[1].CreatedAt))

	got, err = rec.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSQLiteRecorderRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	rec, err := NewSQLiteRecorder(ctx, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	r := models.AnalysisRecord{ID: "dup", Symbol: "BTC-USD", Interval: "5m", LookbackDays: 1, Strategy: "extrema"}
	require.NoError(t, rec.Record(ctx, r))
	require.Error(t, rec.Record(ctx, r))
}

func TestNoopRecorder(t *testing.T) {
	rec := NewNoopRecorder()
	require.NoError(t, rec.Record(context.Background(), models.AnalysisRecord{ID: "x"}))
	got, err := rec.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, rec.Close())
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}

	rec, err := New(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &NoopRecorder{}, rec)

	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = filepath.Join(t.TempDir(), "journal.db")
	rec, err = New(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	cfg.Database.Driver = "mysql"
	_, err = New(ctx, cfg)
	require.Error(t, err)
}

func TestConnectionParamsDSN(t *testing.T) {
	p := ConnectionParams{Host: "db", User: "app", Password: "secret", DBName: "journal"}
	require.Equal(t, "host=db port=5432 user=app password=secret dbname=journal sslmode=disable", p.DSN())
}
