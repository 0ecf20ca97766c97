package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/types"
)

type AlumniRecordRepo interface {
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.AlumniRecord, error)
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, record *types.AlumniRecord) (bool, error)
	UpdateApproval(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, approved bool) error
	ProfileURLExists(ctx context.Context, tx *gorm.DB, profileURL string) (bool, error)
}

type alumniRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAlumniRecordRepo(db *gorm.DB, baseLog *logger.Logger) AlumniRecordRepo {
	repoLog := baseLog.With("repo", "AlumniRecordRepo")
	return &alumniRecordRepo{db: db, log: repoLog}
}

func (ar *alumniRecordRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.AlumniRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.AlumniRecord
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// CreateIfAbsent inserts the record unless a row with the same
// profile_url already exists. The conflict lands on the unique index,
// so two scans racing on the same URL cannot both insert. Returns
// whether a new row was written.
func (ar *alumniRecordRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, record *types.AlumniRecord) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	result := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_url"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (ar *alumniRecordRepo) UpdateApproval(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, approved bool) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	result := transaction.WithContext(ctx).
		Model(&types.AlumniRecord{}).
		Where("id = ?", recordID).
		Update("is_approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (ar *alumniRecordRepo) ProfileURLExists(ctx context.Context, tx *gorm.DB, profileURL string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AlumniRecord{}).
		Where("profile_url = ?", profileURL).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
