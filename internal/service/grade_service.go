package service

import (
	"context"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/stats"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

var gradeSources = []string{models.SourceActivities, models.SourceSubmissions}

// GradeService joins submissions to their activities and derives grading
// figures. Grading itself happens on the assessment service; this layer only
// validates and passes the write through.
type GradeService struct {
	sources     sourceReader
	writer      sourceWriter
	coordinator *fetch.Coordinator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs the service.
func NewGradeService(sources sourceReader, writer sourceWriter, coordinator *fetch.Coordinator, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{sources: sources, writer: writer, coordinator: coordinator, validator: validate, logger: logger}
}

// CourseGrades aggregates grading per activity for one course. Ungraded
// submissions appear in counts but never in percentage averages.
func (s *GradeService) CourseGrades(ctx context.Context, session models.Session, courseID string) (*dto.CourseReportResponse, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}

	query := url.Values{"course": {courseID}}
	tasks := []fetch.Task{
		{Source: models.SourceActivities, Run: func(ctx context.Context) ([]models.Record, error) {
			return s.sources.Fetch(ctx, models.SourceActivities, query)
		}},
		{Source: models.SourceSubmissions, Run: func(ctx context.Context) ([]models.Record, error) {
			return s.sources.Fetch(ctx, models.SourceSubmissions, query)
		}},
	}
	outcomes, err := s.coordinator.Gather(ctx, tasks)
	if err != nil {
		return nil, err
	}

	entries, err := gradeEntriesFromOutcomes(outcomes)
	if err != nil {
		return nil, err
	}
	return &dto.CourseReportResponse{
		CourseID: courseID,
		Grades:   stats.RollupGrades(entries),
		Verdict:  fetch.Evaluate(gradeSources, outcomes),
	}, nil
}

// GradeSubmissionRequest is the instructor's grading payload. The entered
// score stands as-is: the configured late penalty is surfaced for display
// but never subtracted automatically.
type GradeSubmissionRequest struct {
	SubmissionID string  `json:"submission_id" validate:"required"`
	ActivityID   string  `json:"activity_id" validate:"required"`
	Score        float64 `json:"score" validate:"min=0"`
}

// GradeSubmission validates the score against the activity's total points and
// passes the update through to the assessment service.
func (s *GradeService) GradeSubmission(ctx context.Context, session models.Session, req GradeSubmissionRequest) (models.Record, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	activityRecord, err := s.writer.GetRecord(ctx, models.SourceActivities, req.ActivityID)
	if err != nil {
		return nil, err
	}
	totalPoints, _ := activityRecord.Float("total_points")
	if totalPoints > 0 && req.Score > totalPoints {
		return nil, appErrors.Clone(appErrors.ErrValidation, "score exceeds activity total points")
	}

	payload := map[string]interface{}{
		"score":    req.Score,
		"status":   string(models.SubmissionStatusGraded),
		"gradedBy": session.UserID,
	}
	record, err := s.writer.UpdateRecord(ctx, models.SourceSubmissions, req.SubmissionID, payload)
	if err != nil {
		s.logger.Warn("grade update rejected",
			zap.String("submission_id", req.SubmissionID),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}
