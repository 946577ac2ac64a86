package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/service"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, session models.Session, req service.EnrollRequest) (models.Record, error)
	UpdateStatus(ctx context.Context, session models.Session, req service.UpdateEnrollmentStatusRequest) (models.Record, error)
	Drop(ctx context.Context, session models.Session, enrollmentID string) error
}

// EnrollmentHandler serves enrollment lifecycle writes.
type EnrollmentHandler struct {
	service enrollmentService
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(service enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// Enroll godoc
// @Summary Enroll a student in a course section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollRequest true "Enrollment"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	record, err := h.service.Enroll(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// UpdateStatus godoc
// @Summary Update an enrollment's lifecycle status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.UpdateEnrollmentStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/status [patch]
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	if id := c.Param("id"); id != "" {
		req.EnrollmentID = id
	}
	record, err := h.service.UpdateStatus(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Drop godoc
// @Summary Remove an enrollment
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 204
// @Router /enrollments/{id} [delete]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	enrollmentID := strings.TrimSpace(c.Param("id"))
	if enrollmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "enrollment id is required"))
		return
	}
	if err := h.service.Drop(c.Request.Context(), session, enrollmentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
