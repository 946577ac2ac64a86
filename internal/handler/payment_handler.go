package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/service"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
	"github.com/alifdwt/lms-bff-api/pkg/response"
)

type paymentService interface {
	List(ctx context.Context, session models.Session) (*service.PaymentListResponse, error)
	CreateRequest(ctx context.Context, session models.Session, req service.CreatePaymentRequest) (models.Record, error)
	UpdateStatus(ctx context.Context, session models.Session, req service.UpdateStatusRequest) (models.Record, error)
}

// PaymentHandler serves the payment list view and lifecycle writes.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(service paymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// List godoc
// @Summary Payments joined with student and course detail
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	list, err := h.service.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list.Verdict.Status != fetch.StatusComplete {
		response.Degraded(c, list, list.Verdict.FailedSources)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// Create godoc
// @Summary Submit a payment request
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment request"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	record, err := h.service.CreateRequest(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// UpdateStatus godoc
// @Summary Advance a pending payment to a terminal state
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body service.UpdateStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /payments/{id}/status [patch]
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	if id := c.Param("id"); id != "" {
		req.PaymentID = id
	}
	record, err := h.service.UpdateStatus(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
