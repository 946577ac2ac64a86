package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// EnrollmentService passes enrollment writes through to the courses service.
// There is no enforced transition table: admins may set any valid status, and
// the aggregation layer keeps treating enrolled/active as one bucket.
type EnrollmentService struct {
	writer    sourceWriter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(writer sourceWriter, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{writer: writer, validator: validate, logger: logger}
}

// EnrollRequest registers a student into a section.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// Enroll creates the enrollment on the courses service.
func (s *EnrollmentService) Enroll(ctx context.Context, session models.Session, req EnrollRequest) (models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	payload := map[string]interface{}{
		"student": req.StudentID,
		"course":  req.CourseID,
		"section": req.SectionID,
		"status":  string(models.EnrollmentStatusEnrolled),
	}
	return s.writer.CreateRecord(ctx, models.SourceEnrollments, payload)
}

// UpdateEnrollmentStatusRequest sets an enrollment's status directly.
type UpdateEnrollmentStatusRequest struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	Status       string `json:"status" validate:"required"`
}

// UpdateStatus validates the status value and dispatches the update. A
// failure is surfaced to the caller; the caller decides whether to retry.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, session models.Session, req UpdateEnrollmentStatusRequest) (models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	status := models.EnrollmentStatus(req.Status)
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown enrollment status %q", req.Status))
	}
	record, err := s.writer.UpdateRecord(ctx, models.SourceEnrollments, req.EnrollmentID, map[string]interface{}{
		"status":    req.Status,
		"updatedBy": session.UserID,
	})
	if err != nil {
		s.logger.Warn("enrollment update rejected",
			zap.String("enrollment_id", req.EnrollmentID),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

// Drop removes an enrollment entirely. Most callers prefer UpdateStatus with
// a dropped status; hard deletes are admin-only.
func (s *EnrollmentService) Drop(ctx context.Context, session models.Session, enrollmentID string) error {
	if enrollmentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "enrollmentId is required")
	}
	if !session.CanManage() {
		return appErrors.ErrForbidden
	}
	return s.writer.DeleteRecord(ctx, models.SourceEnrollments, enrollmentID)
}
