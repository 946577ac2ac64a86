package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/service"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/response"
)

type gradeService interface {
	CourseGrades(ctx context.Context, session models.Session, courseID string) (*dto.CourseReportResponse, error)
	GradeSubmission(ctx context.Context, session models.Session, req service.GradeSubmissionRequest) (models.Record, error)
}

// GradeHandler serves grading rollups and the grading passthrough.
type GradeHandler struct {
	service gradeService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(service gradeService) *GradeHandler {
	return &GradeHandler{service: service}
}

// CourseGrades godoc
// @Summary Grade rollups per activity for one course
// @Tags Grades
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/grades [get]
func (h *GradeHandler) CourseGrades(c *gin.Context) {
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
	report, err := h.service.CourseGrades(c.Request.Context(), session, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if report.Verdict.Status != fetch.StatusComplete {
		response.Degraded(c, report, report.Verdict.FailedSources)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// GradeSubmission godoc
// @Summary Grade one submission via the assessment service
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.GradeSubmissionRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Router /submissions/grade [post]
func (h *GradeHandler) GradeSubmission(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	record, err := h.service.GradeSubmission(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
