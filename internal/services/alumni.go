package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoba/alumni-backend/internal/filter"
	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/repos"
	"github.com/ecoba/alumni-backend/internal/types"
)

type AlumniService interface {
	List(ctx context.Context) ([]*types.AlumniRecord, error)
	SetApproval(ctx context.Context, recordID uuid.UUID, approved bool) error
	Stats(ctx context.Context) (*types.DashboardStats, error)
	Locations(ctx context.Context) ([]string, error)
	Export(ctx context.Context, state types.FilterState) ([]byte, string, error)
}

type alumniService struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     repos.AlumniRecordRepo
	notifier NotificationService
}

func NewAlumniService(db *gorm.DB, log *logger.Logger, repo repos.AlumniRecordRepo, notifier NotificationService) AlumniService {
	return &alumniService{
		db:       db,
		log:      log.With("service", "AlumniService"),
		repo:     repo,
		notifier: notifier,
	}
}

func (as *alumniService) List(ctx context.Context) ([]*types.AlumniRecord, error) {
	return as.repo.ListAll(ctx, nil)
}

func (as *alumniService) SetApproval(ctx context.Context, recordID uuid.UUID, approved bool) error {
	if err := as.repo.UpdateApproval(ctx, nil, recordID, approved); err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	as.log.Info("Approval updated", "record_id", recordID, "approved", approved)
	return nil
}

// Stats computes the dashboard summary over the full record set, never
// over a filtered view.
func (as *alumniService) Stats(ctx context.Context) (*types.DashboardStats, error) {
	records, err := as.repo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	stats := filter.Stats(records, time.Now())
	return &stats, nil
}

func (as *alumniService) Locations(ctx context.Context) ([]string, error) {
	records, err := as.repo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	return filter.AvailableLocations(records), nil
}

// Export applies the filter state server-side and renders the matching
// records as CSV. Returns the payload and a dated filename.
func (as *alumniService) Export(ctx context.Context, state types.FilterState) ([]byte, string, error) {
	records, err := as.repo.ListAll(ctx, nil)
	if err != nil {
		return nil, "", err
	}
	matched := filter.Apply(records, state)
	payload, err := ExportCSV(matched)
	if err != nil {
		return nil, "", err
	}
	as.log.Info("Exported records", "count", len(matched))
	return payload, ExportFilename(time.Now()), nil
}
