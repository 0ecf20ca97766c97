package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecoba/alumni-backend/internal/services"
	"github.com/ecoba/alumni-backend/internal/types"
)

type AlumniHandler struct {
	alumniService services.AlumniService
}

func NewAlumniHandler(alumniService services.AlumniService) *AlumniHandler {
	return &AlumniHandler{alumniService: alumniService}
}

// GET /api/alumni
func (h *AlumniHandler) ListAlumni(c *gin.Context) {
	records, err := h.alumniService.List(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"records": records})
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

// PATCH /api/alumni/:id/approval
func (h *AlumniHandler) UpdateApproval(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_record_id", err)
		return
	}

	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	if err := h.alumniService.SetApproval(c.Request.Context(), recordID, req.Approved); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			RespondError(c, http.StatusNotFound, "record_not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "approval_failed", err)
		return
	}
	RespondOK(c, gin.H{"id": recordID, "approved": req.Approved})
}

// GET /api/alumni/stats
func (h *AlumniHandler) GetStats(c *gin.Context) {
	stats, err := h.alumniService.Stats(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "stats_failed", err)
		return
	}
	RespondOK(c, gin.H{"stats": stats})
}

// GET /api/alumni/locations
func (h *AlumniHandler) GetLocations(c *gin.Context) {
	locations, err := h.alumniService.Locations(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "locations_failed", err)
		return
	}
	RespondOK(c, gin.H{"locations": locations})
}

// GET /api/alumni/export
// Filter state comes in as query parameters; the CSV covers exactly
// the records the dashboard table would show.
func (h *AlumniHandler) ExportCSV(c *gin.Context) {
	state, err := filterStateFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_filter", err)
		return
	}

	payload, filename, err := h.alumniService.Export(c.Request.Context(), state)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", payload)
}

func filterStateFromQuery(c *gin.Context) (types.FilterState, error) {
	state := types.DefaultFilterState()

	state.SearchQuery = c.Query("q")

	if v := c.Query("year_from"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return state, err
		}
		state.YearRange[0] = year
	}
	if v := c.Query("year_to"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return state, err
		}
		state.YearRange[1] = year
	}
	if v := c.Query("min_confidence"); v != "" {
		minConf, err := strconv.Atoi(v)
		if err != nil {
			return state, err
		}
		state.MinConfidence = minConf
	}
	if v := c.Query("approval"); v != "" {
		state.ApprovalStatus = types.ApprovalFilter(v)
	}
	if v := c.Query("platforms"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			platform, ok := types.ParsePlatform(strings.TrimSpace(raw))
			if !ok {
				continue
			}
			state.Platforms = append(state.Platforms, platform)
		}
	}
	if v := c.Query("status"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			status := types.AlumniStatus(strings.TrimSpace(raw))
			if !status.Valid() {
				continue
			}
			state.Status = append(state.Status, status)
		}
	}

	return state, nil
}
