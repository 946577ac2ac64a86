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

type dashboardService interface {
	Overview(ctx context.Context, session models.Session) (*dto.DashboardOverviewResponse, error)
}

// DashboardHandler wires the dashboard aggregation to HTTP.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview godoc
// @Summary Dashboard counters across all owning services
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(overview.Degraded) > 0 {
		response.Degraded(c, overview, overview.Degraded)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}
