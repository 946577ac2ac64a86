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

type attendanceService interface {
	SectionStatistics(ctx context.Context, session models.Session, sectionID string) (*dto.AttendanceReportResponse, error)
	Mark(ctx context.Context, session models.Session, req service.MarkAttendanceRequest) (models.Record, error)
	BulkMark(ctx context.Context, session models.Session, req service.BulkMarkRequest) ([]models.Record, error)
}

// AttendanceHandler serves attendance statistics and the mark passthrough.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// SectionStatistics godoc
// @Summary Per-student attendance rates for one section
// @Tags Attendance
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/attendance [get]
func (h *AttendanceHandler) SectionStatistics(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sectionID := strings.TrimSpace(c.Param("id"))
	if sectionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section id is required"))
		return
	}
	report, err := h.service.SectionStatistics(c.Request.Context(), session, sectionID)
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

// Mark godoc
// @Summary Record one attendance mark via the owning service
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance mark"
// @Success 201 {object} response.Envelope
// @Router /attendance/marks [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	record, err := h.service.Mark(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// BulkMark godoc
// @Summary Record a whole session's marks for one section
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.BulkMarkRequest true "Marks keyed by student ID"
// @Success 201 {object} response.Envelope
// @Router /attendance/marks/bulk [post]
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.BulkMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	records, err := h.service.BulkMark(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, records)
}
