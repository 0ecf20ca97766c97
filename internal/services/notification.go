package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/repos"
	"github.com/ecoba/alumni-backend/internal/sse"
	"github.com/ecoba/alumni-backend/internal/types"
)

type NotificationService interface {
	Notify(ctx context.Context, notification *types.Notification) error
	ListRecent(ctx context.Context, limit int) ([]*types.Notification, error)
	MarkRead(ctx context.Context, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context) error
}

type notificationService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.NotificationRepo
	hub  *sse.SSEHub
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, repo repos.NotificationRepo, hub *sse.SSEHub) NotificationService {
	return &notificationService{
		db:   db,
		log:  log.With("service", "NotificationService"),
		repo: repo,
		hub:  hub,
	}
}

// Notify persists the notification and pushes it to connected clients.
// Broadcast failure cannot happen (the hub drops on full buffers), so
// a persisted notification is always eventually visible via polling.
func (ns *notificationService) Notify(ctx context.Context, notification *types.Notification) error {
	if notification == nil {
		return fmt.Errorf("notification required")
	}
	if err := ns.repo.Create(ctx, nil, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	if ns.hub != nil {
		ns.hub.Broadcast(sse.SSEMessage{
			Channel: sse.ChannelNotifications,
			Event:   sse.SSEEventNotificationCreated,
			Data:    notification,
		})
	}
	return nil
}

func (ns *notificationService) ListRecent(ctx context.Context, limit int) ([]*types.Notification, error) {
	return ns.repo.ListRecent(ctx, nil, limit)
}

func (ns *notificationService) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	return ns.repo.MarkRead(ctx, nil, notificationID)
}

func (ns *notificationService) MarkAllRead(ctx context.Context) error {
	return ns.repo.MarkAllRead(ctx, nil)
}
