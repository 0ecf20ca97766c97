package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ScanStatusRunning   = "running"
	ScanStatusCompleted = "completed"
	ScanStatusFailed    = "failed"
)

// ScanHistory is one audit row per scan invocation. Write-mostly; never
// read by the filtering logic.
type ScanHistory struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StartedAt        time.Time      `gorm:"column:started_at;not null;default:now()" json:"started_at"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completed_at"`
	Status           string         `gorm:"column:status;not null;default:'running'" json:"status"`
	PlatformsScanned datatypes.JSON `gorm:"type:jsonb;column:platforms_scanned" json:"platforms_scanned"`
	RecordsFound     int            `gorm:"column:records_found;not null;default:0" json:"records_found"`
	ErrorMessage     *string        `gorm:"column:error_message" json:"error_message"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ScanHistory) TableName() string { return "scan_history" }
