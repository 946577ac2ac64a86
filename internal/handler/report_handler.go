package handler

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/response"
)

type reportService interface {
	CourseReport(ctx context.Context, session models.Session, courseID string) (*dto.CourseReportResponse, error)
	InstructorReport(ctx context.Context, session models.Session) (*dto.InstructorReportResponse, error)
	StudentReport(ctx context.Context, session models.Session, studentID string) (*dto.StudentReportResponse, error)
}

type exportService interface {
	Enqueue(ctx context.Context, session models.Session, exportType, courseID, sectionID string) (*dto.ExportJobResponse, error)
	Status(ctx context.Context, id string) (*dto.ExportJobResponse, error)
	Download(ctx context.Context, token string) ([]byte, string, error)
}

// ReportHandler serves cross-source reports and their async exports.
type ReportHandler struct {
	reports reportService
	exports exportService
}

// NewReportHandler constructs the handler. The exports service may be nil
// when the export subsystem is disabled.
func NewReportHandler(reports reportService, exports exportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// CourseReport godoc
// @Summary Enrollment and grading report for one course
// @Tags Reports
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /reports/courses/{id} [get]
func (h *ReportHandler) CourseReport(c *gin.Context) {
	if h.reports == nil {
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
	report, err := h.reports.CourseReport(c.Request.Context(), session, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, report, report.Verdict)
}

// InstructorReport godoc
// @Summary Teaching load per instructor
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/instructors [get]
func (h *ReportHandler) InstructorReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.reports.InstructorReport(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, report, report.Verdict)
}

// StudentReport godoc
// @Summary Enrollment, grade, and attendance report for one student
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /reports/students/{id} [get]
func (h *ReportHandler) StudentReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	studentID := strings.TrimSpace(c.Param("id"))
	if studentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student id is required"))
		return
	}
	report, err := h.reports.StudentReport(c.Request.Context(), session, studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, report, report.Verdict)
}

type enqueueExportRequest struct {
	Type      string `json:"type" binding:"required"`
	CourseID  string `json:"course_id"`
	SectionID string `json:"section_id"`
}

// EnqueueExport godoc
// @Summary Queue an asynchronous report export
// @Tags Reports
// @Accept json
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /exports [post]
func (h *ReportHandler) EnqueueExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exports are disabled"))
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req enqueueExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	job, err := h.exports.Enqueue(c.Request.Context(), session, req.Type, req.CourseID, req.SectionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Inspect an export job
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/{id} [get]
func (h *ReportHandler) ExportStatus(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exports are disabled"))
		return
	}
	job, err := h.exports.Status(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// DownloadExport godoc
// @Summary Download a finished export artifact via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /exports/download [get]
func (h *ReportHandler) DownloadExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exports are disabled"))
		return
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	data, name, err := h.exports.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentType := "application/octet-stream"
	switch filepath.Ext(name) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(name)+`"`)
	c.Data(http.StatusOK, contentType, data)
}

func (h *ReportHandler) respond(c *gin.Context, data interface{}, verdict fetch.Verdict) {
	if verdict.Status != fetch.StatusComplete {
		response.Degraded(c, data, verdict.FailedSources)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
