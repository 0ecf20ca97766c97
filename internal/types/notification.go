package types

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewRecord    NotificationType = "new_record"
	NotificationScanComplete NotificationType = "scan_complete"
	NotificationNeedsReview  NotificationType = "needs_review"
	NotificationSystem       NotificationType = "system"
)

type Notification struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title           string           `gorm:"column:title;not null" json:"title"`
	Message         string           `gorm:"column:message;not null" json:"message"`
	Type            NotificationType `gorm:"column:type;not null;default:'system'" json:"type"`
	IsRead          bool             `gorm:"column:is_read;not null;default:false" json:"is_read"`
	RelatedRecordID *uuid.UUID       `gorm:"type:uuid;column:related_record_id" json:"related_record_id"`
	CreatedAt       time.Time        `gorm:"not null;default:now()" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }
