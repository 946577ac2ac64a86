package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/response"
)

type sourceHealthService interface {
	List(ctx context.Context) ([]models.SourceStatus, error)
}

// HealthHandler serves liveness and the per-source status ledger.
type HealthHandler struct {
	health sourceHealthService
}

// NewHealthHandler constructs the handler.
func NewHealthHandler(health sourceHealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *HealthHandler) Live(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}

// Sources godoc
// @Summary Last observed fetch status per upstream source
// @Tags Health
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health/sources [get]
func (h *HealthHandler) Sources(c *gin.Context) {
	if h.health == nil {
		response.JSON(c, http.StatusOK, dto.SourceHealthResponse{Sources: []models.SourceStatus{}}, nil)
		return
	}
	statuses, err := h.health.List(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "read source statuses"))
		return
	}
	response.JSON(c, http.StatusOK, dto.SourceHealthResponse{Sources: statuses}, nil)
}
