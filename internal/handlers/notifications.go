package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoba/alumni-backend/internal/services"
)

type NotificationHandler struct {
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /api/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.notificationService.ListRecent(c.Request.Context(), 20)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "notifications_failed", err)
		return
	}
	RespondOK(c, gin.H{"notifications": notifications})
}

// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_notification_id", err)
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "notification_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "mark_read_failed", err)
		return
	}
	RespondOK(c, gin.H{"id": notificationID, "read": true})
}

// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context()); err != nil {
		RespondError(c, http.StatusInternalServerError, "mark_all_read_failed", err)
		return
	}
	RespondOK(c, gin.H{"read": true})
}
