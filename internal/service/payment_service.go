package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/source"
	"github.com/alifdwt/lms-bff-api/internal/view"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

var paymentSources = []string{models.SourcePayments, models.SourceStudents, models.SourceCourses}

var paymentJoins = []view.JoinSpec{
	{Field: "student", Source: models.SourceStudents},
	{Field: "course", Source: models.SourceCourses},
}

// PaymentService owns the payment approval workflow from this layer's side:
// a request enters pending_paypal_approval and stays there across any number
// of refetches until an explicit status update moves it to a terminal state.
// There is no timeout transition. Gateway wire mechanics live elsewhere.
type PaymentService struct {
	sources     sourceReader
	writer      sourceWriter
	coordinator *fetch.Coordinator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewPaymentService constructs the service.
func NewPaymentService(sources sourceReader, writer sourceWriter, coordinator *fetch.Coordinator, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{sources: sources, writer: writer, coordinator: coordinator, validator: validate, logger: logger}
}

// PaymentListResponse is the payment ledger widened with student and course
// detail.
type PaymentListResponse struct {
	Payments []view.Composite `json:"payments"`
	Verdict  fetch.Verdict    `json:"verdict"`
}

// List joins payments with students and courses. Missing sides render as
// Unknown placeholders.
func (s *PaymentService) List(ctx context.Context, session models.Session) (*PaymentListResponse, error) {
	tasks, err := s.sources.Tasks(paymentSources, nil)
	if err != nil {
		return nil, err
	}
	outcomes, err := s.coordinator.Gather(ctx, tasks)
	if err != nil {
		return nil, err
	}

	paymentsOutcome, _ := outcomes.Get(models.SourcePayments)
	if !paymentsOutcome.OK() {
		return &PaymentListResponse{
			Payments: []view.Composite{},
			Verdict:  fetch.Evaluate(paymentSources, outcomes),
		}, nil
	}

	requested := map[string]bool{}
	for _, name := range paymentSources {
		requested[name] = true
	}
	composites, err := view.Assemble(paymentsOutcome.Records, paymentJoins, outcomes.Collections(), requested)
	if err != nil {
		return nil, err
	}
	if unresolved := view.CountUnknown(composites); unresolved > 0 {
		s.logger.Warn("payment listing rendered with unresolved references",
			zap.Int("unresolved", unresolved),
			zap.String("code", appErrors.ErrReferenceUnresolved.Code))
	}
	return &PaymentListResponse{Payments: composites, Verdict: fetch.Evaluate(paymentSources, outcomes)}, nil
}

// CreatePaymentRequest is the student's payment request payload.
type CreatePaymentRequest struct {
	CourseID string  `json:"course_id" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// CreateRequest submits a payment request to the payments service. The row is
// created in pending_paypal_approval before any gateway interaction.
func (s *PaymentService) CreateRequest(ctx context.Context, session models.Session, req CreatePaymentRequest) (models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	payload := map[string]interface{}{
		"student": session.UserID,
		"course":  req.CourseID,
		"amount":  req.Amount,
		"status":  string(models.PaymentStatusPendingApproval),
	}
	return s.writer.CreateRecord(ctx, models.SourcePayments, payload)
}

// UpdateStatusRequest advances a payment to a terminal state.
type UpdateStatusRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// UpdateStatus applies an explicit transition. Only pending payments may
// advance, and only to a terminal state; anything else is rejected before
// the write is dispatched.
func (s *PaymentService) UpdateStatus(ctx context.Context, session models.Session, req UpdateStatusRequest) (models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	next := models.PaymentStatus(req.Status)
	if !next.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown payment status %q", req.Status))
	}

	current, err := s.currentStatus(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if !current.CanTransition(next) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move payment from %s to %s", current, next))
	}

	record, err := s.writer.UpdateRecord(ctx, models.SourcePayments, req.PaymentID, map[string]interface{}{
		"status":    string(next),
		"updatedBy": session.UserID,
	})
	if err != nil {
		s.logger.Warn("payment status update rejected",
			zap.String("payment_id", req.PaymentID),
			zap.String("status", req.Status),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

func (s *PaymentService) currentStatus(ctx context.Context, paymentID string) (models.PaymentStatus, error) {
	record, err := s.writer.GetRecord(ctx, models.SourcePayments, paymentID)
	if err != nil {
		return "", err
	}
	payments, err := source.DecodeAs[models.Payment]([]models.Record{record})
	if err != nil {
		return "", err
	}
	if len(payments) == 0 {
		return "", appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	return payments[0].Status, nil
}
