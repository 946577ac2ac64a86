package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/response"
)

type aggregateService interface {
	Aggregate(ctx context.Context, session models.Session, sources []string) (*dto.AggregateResponse, error)
}

// AggregateHandler exposes the generic multi-source read.
type AggregateHandler struct {
	service aggregateService
}

// NewAggregateHandler constructs the handler.
func NewAggregateHandler(service aggregateService) *AggregateHandler {
	return &AggregateHandler{service: service}
}

// Aggregate godoc
// @Summary Fetch raw collections from multiple sources in one round trip
// @Tags Aggregate
// @Produce json
// @Param sources query string true "Comma-separated source names"
// @Success 200 {object} response.Envelope
// @Router /aggregate [get]
func (h *AggregateHandler) Aggregate(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	raw := strings.TrimSpace(c.Query("sources"))
	if raw == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "sources is required"))
		return
	}
	sources := make([]string, 0)
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			sources = append(sources, name)
		}
	}

	result, err := h.service.Aggregate(c.Request.Context(), session, sources)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
