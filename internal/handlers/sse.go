package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecoba/alumni-backend/internal/logger"
	"github.com/ecoba/alumni-backend/internal/sse"
)

type SSEHandler struct {
	log *logger.Logger
	hub *sse.SSEHub
}

func NewSSEHandler(log *logger.Logger, hub *sse.SSEHub) *SSEHandler {
	return &SSEHandler{
		log: log.With("handler", "SSEHandler"),
		hub: hub,
	}
}

// GET /sse/stream?channels=scan,notifications
// One connection per dashboard tab; defaults to both well-known
// channels when none are named.
func (h *SSEHandler) Stream(c *gin.Context) {
	client := h.hub.NewSSEClient()

	channels := []string{sse.ChannelScan, sse.ChannelNotifications}
	if raw := c.Query("channels"); raw != "" {
		channels = strings.Split(raw, ",")
	}
	for _, ch := range channels {
		h.hub.AddChannel(client, strings.TrimSpace(ch))
	}

	defer h.hub.CloseClient(client)
	h.hub.ServeHTTP(c.Writer, c.Request, client)
}
