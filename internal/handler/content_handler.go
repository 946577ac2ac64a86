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

type contentService interface {
	CourseOutline(ctx context.Context, session models.Session, courseID string) (*dto.CourseOutlineResponse, error)
}

// ContentHandler serves the two-level course content tree.
type ContentHandler struct {
	service contentService
}

// NewContentHandler constructs the handler.
func NewContentHandler(service contentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// CourseOutline godoc
// @Summary Course modules with lessons grouped per module
// @Tags Content
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/outline [get]
func (h *ContentHandler) CourseOutline(c *gin.Context) {
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
	outline, err := h.service.CourseOutline(c.Request.Context(), session, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if outline.Verdict.Status != fetch.StatusComplete {
		response.Degraded(c, outline, outline.Verdict.FailedSources)
		return
	}
	response.JSON(c, http.StatusOK, outline, nil)
}
