package repository

import (
	"context"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/models"

	"gorm.io/gorm"
)

// PredictionRecorder stores predictions served by the API.
type PredictionRecorder interface {
	SavePrediction(ctx context.Context, entry *models.PredictionLog) error
}

// PredictionHistory reads back the prediction log.
type PredictionHistory interface {
	RecentPredictions(ctx context.Context, limit int) ([]models.PredictionLog, error)
	CountSince(ctx context.Context, t time.Time) (int64, error)
}

// NoopRecorder discards predictions; used when no database is configured.
type NoopRecorder struct{}

func (NoopRecorder) SavePrediction(context.Context, *models.PredictionLog) error { return nil }

// PredictionRepository persists predictions with gorm.
type PredictionRepository struct {
	db *gorm.DB
}

func NewPredictionRepository(db *gorm.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// SavePrediction inserts one prediction log entry.
func (r *PredictionRepository) SavePrediction(ctx context.Context, entry *models.PredictionLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// RecentPredictions returns the newest entries first.
func (r *PredictionRepository) RecentPredictions(ctx context.Context, limit int) ([]models.PredictionLog, error) {
	var entries []models.PredictionLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// CountSince counts the predictions served since t.
func (r *PredictionRepository) CountSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PredictionLog{}).Where("created_at >= ?", t).Count(&count).Error
	return count, err
}
