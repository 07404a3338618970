package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kurihiro0119/jira-effort-metrics/internal/errors"
	"github.com/kurihiro0119/jira-effort-metrics/internal/report"
	"github.com/kurihiro0119/jira-effort-metrics/internal/storage"
)

// Handler handles API requests over the accumulated issue dataset
type Handler struct {
	store storage.Store
}

// NewHandler creates a new API handler
func NewHandler(store storage.Store) *Handler {
	return &Handler{
		store: store,
	}
}

// HealthCheck returns the service health
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GetDatasetSummary returns the dataset's shape
// GET /api/v1/dataset/summary
func (h *Handler) GetDatasetSummary(c *gin.Context) {
	t, err := h.store.LoadDataset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	indexes := t.Indexes()
	summary := gin.H{
		"rows":    t.Len(),
		"columns": t.Columns(),
	}
	if len(indexes) > 0 {
		summary["first_issue"] = indexes[0]
		summary["last_issue"] = indexes[len(indexes)-1]
	}

	c.JSON(http.StatusOK, gin.H{
		"data": summary,
	})
}

// GetSprintBugs returns per-sprint bug counts
// GET /api/v1/sprints/bugs
func (h *Handler) GetSprintBugs(c *gin.Context) {
	t, err := h.store.LoadDataset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	tally := report.TallyBugsBySprint(t)
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"sprints": tally.Sprints,
			"counts":  tally.Counts,
		},
	})
}

// GetEstimateAccuracy returns estimate-vs-actual rows
// GET /api/v1/estimates/accuracy
func (h *Handler) GetEstimateAccuracy(c *gin.Context) {
	t, err := h.store.LoadDataset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report.EstimateAccuracy(t),
	})
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeUnauthorized:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
