package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/types"
)

type ScanHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.ScanHistory) error
	MarkCompleted(ctx context.Context, tx *gorm.DB, runID uuid.UUID, recordsFound int) error
	MarkFailed(ctx context.Context, tx *gorm.DB, runID uuid.UUID, message string) error
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ScanHistory, error)
}

type scanHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScanHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ScanHistoryRepo {
	repoLog := baseLog.With("repo", "ScanHistoryRepo")
	return &scanHistoryRepo{db: db, log: repoLog}
}

func (sr *scanHistoryRepo) Create(ctx context.Context, tx *gorm.DB, run *types.ScanHistory) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Create(run).Error
}

func (sr *scanHistoryRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, runID uuid.UUID, recordsFound int) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.ScanHistory{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":        types.ScanStatusCompleted,
			"completed_at":  &now,
			"records_found": recordsFound,
		}).Error
}

func (sr *scanHistoryRepo) MarkFailed(ctx context.Context, tx *gorm.DB, runID uuid.UUID, message string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.ScanHistory{}).
		Where("id = ?", runID).
		Updates(map[string]interface{}{
			"status":        types.ScanStatusFailed,
			"completed_at":  &now,
			"error_message": message,
		}).Error
}

func (sr *scanHistoryRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ScanHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if limit <= 0 {
		limit = 20
	}

	var results []*types.ScanHistory
	if err := transaction.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
