package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/response"
)

type rosterService interface {
	CourseRoster(ctx context.Context, session models.Session, courseID string) (*dto.RosterResponse, error)
}

// RosterHandler serves assembled course rosters.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// CourseRoster godoc
// @Summary Course roster with student, course, and section detail joined in
// @Tags Roster
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/roster [get]
func (h *RosterHandler) CourseRoster(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	courseID := strings.TrimSpace(c.Param("id"))
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course id is required"))
		return
	}
	roster, err := h.service.CourseRoster(c.Request.Context(), session, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if roster.Verdict.Status != fetch.StatusComplete {
		response.Degraded(c, roster, roster.Verdict.FailedSources)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}
