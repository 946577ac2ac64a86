package service

import (
	"context"
	"net/url"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/source"
	"github.com/alifdwt/lms-bff-api/internal/stats"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

var attendanceSources = []string{models.SourceAttendance, models.SourceEnrollments}

// AttendanceService computes section attendance statistics and passes marks
// through to the attendance service.
type AttendanceService struct {
	sources     sourceReader
	writer      sourceWriter
	coordinator *fetch.Coordinator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(sources sourceReader, writer sourceWriter, coordinator *fetch.Coordinator, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{sources: sources, writer: writer, coordinator: coordinator, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// SectionStatistics computes per-student counts and rates over the recorded
// sessions of one section. Only recorded session dates contribute; a rate
// over zero sessions is undefined and returned as nil, never NaN.
func (s *AttendanceService) SectionStatistics(ctx context.Context, session models.Session, sectionID string) (*dto.AttendanceReportResponse, error) {
	if sectionID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sectionId is required")
	}

	query := url.Values{"section": {sectionID}}
	tasks := []fetch.Task{
		{Source: models.SourceAttendance, Run: func(ctx context.Context) ([]models.Record, error) {
			return s.sources.Fetch(ctx, models.SourceAttendance, query)
		}},
		{Source: models.SourceEnrollments, Run: func(ctx context.Context) ([]models.Record, error) {
			return s.sources.Fetch(ctx, models.SourceEnrollments, query)
		}},
	}
	outcomes, err := s.coordinator.Gather(ctx, tasks)
	if err != nil {
		return nil, err
	}
	verdict := fetch.Evaluate(attendanceSources, outcomes)

	sessions, err := source.DecodeAs[models.AttendanceSession](outcomes.Records(models.SourceAttendance))
	if err != nil {
		return nil, err
	}
	enrollments, err := source.DecodeAs[models.Enrollment](outcomes.Records(models.SourceEnrollments))
	if err != nil {
		return nil, err
	}

	roster := make([]string, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if enrollment.Status.Bucket() != models.BucketActive {
			continue
		}
		if enrollment.Student.ID != "" {
			roster = append(roster, enrollment.Student.ID)
		}
	}

	return &dto.AttendanceReportResponse{
		SectionID:     sectionID,
		TotalSessions: len(sessions),
		Students:      stats.SummarizeAttendance(roster, sessions),
		Verdict:       verdict,
	}, nil
}

// MarkAttendanceRequest is the write payload for one student's mark.
type MarkAttendanceRequest struct {
	SectionID string `json:"section_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Status    string `json:"status" validate:"required,attendance_status"`
}

// Mark passes one attendance mark through to the owning service. The write
// either lands there or is surfaced as a rejection; it is never retried and
// a success triggers a caller-driven refetch, not a local merge.
func (s *AttendanceService) Mark(ctx context.Context, session models.Session, req MarkAttendanceRequest) (models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	payload := map[string]interface{}{
		"section":  req.SectionID,
		"student":  req.StudentID,
		"date":     req.Date,
		"status":   req.Status,
		"markedBy": session.UserID,
	}
	record, err := s.writer.CreateRecord(ctx, models.SourceAttendance, payload)
	if err != nil {
		s.logger.Warn("attendance mark rejected",
			zap.String("section_id", req.SectionID),
			zap.String("student_id", req.StudentID),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

// BulkMarkRequest records one session's marks for a whole roster in one call.
type BulkMarkRequest struct {
	SectionID string            `json:"section_id" validate:"required"`
	Date      string            `json:"date" validate:"required"`
	Marks     map[string]string `json:"marks" validate:"required,min=1"`
}

// BulkMark validates the whole batch before writing anything, then issues one
// mark per student sequentially. The first rejected write aborts the rest so a
// caller can retry the batch without double-marking earlier students: the
// attendance service upserts on (section, student, date).
func (s *AttendanceService) BulkMark(ctx context.Context, session models.Session, req BulkMarkRequest) ([]models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	for studentID, status := range req.Marks {
		if studentID == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student id must not be empty")
		}
		if !models.AttendanceStatus(status).Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status: "+status)
		}
	}

	students := make([]string, 0, len(req.Marks))
	for studentID := range req.Marks {
		students = append(students, studentID)
	}
	sort.Strings(students)

	records := make([]models.Record, 0, len(students))
	for _, studentID := range students {
		record, err := s.Mark(ctx, session, MarkAttendanceRequest{
			SectionID: req.SectionID,
			StudentID: studentID,
			Date:      req.Date,
			Status:    req.Marks[studentID],
		})
		if err != nil {
			s.logger.Warn("bulk mark aborted",
				zap.String("section_id", req.SectionID),
				zap.String("student_id", studentID),
				zap.Int("written", len(records)),
				zap.Error(err))
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}
