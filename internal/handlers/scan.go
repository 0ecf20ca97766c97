package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecoba/alumni-backend/internal/services"
	"github.com/ecoba/alumni-backend/internal/types"
)

type ScanHandler struct {
	scanService services.ScanService
}

func NewScanHandler(scanService services.ScanService) *ScanHandler {
	return &ScanHandler{scanService: scanService}
}

type scanRequest struct {
	Query     string   `json:"query"`
	Platforms []string `json:"platforms"`
}

// POST /api/scan
// Response shape is the operator contract: success:false only for
// configuration or top-level transport failures; a scan that found
// nothing is still success:true with an explanatory message.
func (h *ScanHandler) TriggerScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	platforms := make([]types.Platform, 0, len(req.Platforms))
	for _, raw := range req.Platforms {
		platform, ok := types.ParsePlatform(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown platform: " + raw})
			return
		}
		platforms = append(platforms, platform)
	}

	result, err := h.scanService.Scan(c.Request.Context(), req.Query, platforms)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrScanInProgress) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"profiles":    result.Profiles,
		"message":     result.Message,
		"new_records": result.NewRecords,
	})
}

// GET /api/scan/history
func (h *ScanHandler) GetHistory(c *gin.Context) {
	runs, err := h.scanService.History(c.Request.Context(), 20)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	RespondOK(c, gin.H{"history": runs})
}
