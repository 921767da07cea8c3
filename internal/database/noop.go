package database

import (
	"context"

	"github.com/Alias1177/StockPredictor/models"
)

// NoopRecorder discards all records.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Record(context.Context, models.AnalysisRecord) error { return nil }

func (n *NoopRecorder) Recent(context.Context, int) ([]models.AnalysisRecord, error) {
	return nil, nil
}

func (n *NoopRecorder) Close() error { return nil }
