package service

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/source"
	"github.com/alifdwt/lms-bff-api/internal/stats"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// ReportService composes the heavier course/instructor/student rollups.
// Everything here is a fresh aggregation: fetch, decode, compute, discard.
type ReportService struct {
	sources     sourceReader
	coordinator *fetch.Coordinator
	health      healthRecorder
	logger      *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(sources sourceReader, coordinator *fetch.Coordinator, health healthRecorder, logger *zap.Logger) *ReportService {
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{sources: sources, coordinator: coordinator, health: health, logger: logger}
}

// CourseReport aggregates enrollment buckets and grading rollups for one
// course. Aggregates come only from sources that fetched successfully; a
// failed source is flagged, never silently zeroed into the figures.
func (s *ReportService) CourseReport(ctx context.Context, session models.Session, courseID string) (*dto.CourseReportResponse, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	required := []string{models.SourceEnrollments, models.SourceActivities, models.SourceSubmissions}
	query := url.Values{"course": {courseID}}
	outcomes, err := s.gather(ctx, required, query)
	if err != nil {
		return nil, err
	}

	response := &dto.CourseReportResponse{CourseID: courseID, Verdict: fetch.Evaluate(required, outcomes)}

	if records := outcomes.Records(models.SourceEnrollments); records != nil {
		enrollments, err := source.DecodeAs[models.Enrollment](records)
		if err != nil {
			return nil, err
		}
		response.Enrollments = stats.RollupEnrollments(enrollments, stats.ByCourse)
	}

	if outcomes.Records(models.SourceActivities) != nil && outcomes.Records(models.SourceSubmissions) != nil {
		entries, err := gradeEntriesFromOutcomes(outcomes)
		if err != nil {
			return nil, err
		}
		response.Grades = stats.RollupGrades(entries)
	}
	return response, nil
}

// InstructorReport sums enrollment load across every section each instructor
// teaches.
func (s *ReportService) InstructorReport(ctx context.Context, session models.Session) (*dto.InstructorReportResponse, error) {
	required := []string{models.SourceSections, models.SourceEnrollments}
	outcomes, err := s.gather(ctx, required, nil)
	if err != nil {
		return nil, err
	}

	response := &dto.InstructorReportResponse{Verdict: fetch.Evaluate(required, outcomes)}
	sectionRecords := outcomes.Records(models.SourceSections)
	if sectionRecords == nil {
		return response, nil
	}
	sections, err := source.DecodeAs[models.Section](sectionRecords)
	if err != nil {
		return nil, err
	}
	enrollments, err := source.DecodeAs[models.Enrollment](outcomes.Records(models.SourceEnrollments))
	if err != nil {
		return nil, err
	}
	response.Instructors = stats.RollupInstructors(sections, enrollments)
	return response, nil
}

// StudentReport aggregates one student's enrollments and grades.
func (s *ReportService) StudentReport(ctx context.Context, session models.Session, studentID string) (*dto.StudentReportResponse, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "studentId is required")
	}
	required := []string{models.SourceEnrollments, models.SourceActivities, models.SourceSubmissions}
	query := url.Values{"student": {studentID}}
	outcomes, err := s.gather(ctx, required, query)
	if err != nil {
		return nil, err
	}

	response := &dto.StudentReportResponse{StudentID: studentID, Verdict: fetch.Evaluate(required, outcomes)}
	if records := outcomes.Records(models.SourceEnrollments); records != nil {
		enrollments, err := source.DecodeAs[models.Enrollment](records)
		if err != nil {
			return nil, err
		}
		response.Enrollments = stats.RollupEnrollments(enrollments, stats.ByStudent)
	}
	if outcomes.Records(models.SourceActivities) != nil && outcomes.Records(models.SourceSubmissions) != nil {
		entries, err := gradeEntriesFromOutcomes(outcomes)
		if err != nil {
			return nil, err
		}
		response.Grades = entries
	}
	return response, nil
}

func (s *ReportService) gather(ctx context.Context, required []string, query url.Values) (fetch.Outcomes, error) {
	tasks := make([]fetch.Task, 0, len(required))
	for _, name := range required {
		name := name
		tasks = append(tasks, fetch.Task{Source: name, Run: func(ctx context.Context) ([]models.Record, error) {
			return s.sources.Fetch(ctx, name, query)
		}})
	}
	outcomes, err := s.coordinator.Gather(ctx, tasks)
	if err != nil {
		return nil, err
	}
	if s.health != nil {
		s.health.RecordOutcomes(ctx, outcomes)
	}
	return outcomes, nil
}

func gradeEntriesFromOutcomes(outcomes fetch.Outcomes) ([]stats.GradeEntry, error) {
	activities, err := source.DecodeAs[models.Activity](outcomes.Records(models.SourceActivities))
	if err != nil {
		return nil, err
	}
	submissions, err := source.DecodeAs[models.Submission](outcomes.Records(models.SourceSubmissions))
	if err != nil {
		return nil, err
	}
	activityByID := make(map[string]models.Activity, len(activities))
	for _, activity := range activities {
		activityByID[activity.ID] = activity
	}
	return stats.GradeEntries(submissions, activityByID), nil
}
