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
	"github.com/alifdwt/lms-bff-api/internal/view"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// rosterJoins are the declarative join descriptors for enrollment widening.
// All three are many-to-one from the enrollment's perspective.
var rosterJoins = []view.JoinSpec{
	{Field: "student", Source: models.SourceStudents},
	{Field: "course", Source: models.SourceCourses},
	{Field: "section", Source: models.SourceSections},
}

var rosterSources = []string{
	models.SourceEnrollments,
	models.SourceStudents,
	models.SourceCourses,
	models.SourceSections,
}

// RosterService assembles enrollment composite views.
type RosterService struct {
	sources     sourceReader
	coordinator *fetch.Coordinator
	health      healthRecorder
	logger      *zap.Logger
}

// NewRosterService constructs the service.
func NewRosterService(sources sourceReader, coordinator *fetch.Coordinator, health healthRecorder, logger *zap.Logger) *RosterService {
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{sources: sources, coordinator: coordinator, health: health, logger: logger}
}

// CourseRoster widens each enrollment of a course with student, course, and
// section detail. When a joined source failed or a reference dangles, the
// affected side renders the Unknown placeholder; the row itself never drops.
func (s *RosterService) CourseRoster(ctx context.Context, session models.Session, courseID string) (*dto.RosterResponse, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}

	query := url.Values{"course": {courseID}}
	tasks := []fetch.Task{
		s.taskWithQuery(models.SourceEnrollments, query),
		s.taskWithQuery(models.SourceStudents, nil),
		s.taskWithQuery(models.SourceCourses, nil),
		s.taskWithQuery(models.SourceSections, query),
	}
	outcomes, err := s.coordinator.Gather(ctx, tasks)
	if err != nil {
		return nil, err
	}
	if s.health != nil {
		s.health.RecordOutcomes(ctx, outcomes)
	}

	enrollmentOutcome, _ := outcomes.Get(models.SourceEnrollments)
	if !enrollmentOutcome.OK() {
		// The primary collection itself is gone; the view is unavailable
		// but still degrades instead of raising.
		return &dto.RosterResponse{
			CourseID: courseID,
			Entries:  []dto.RosterEntry{},
			Verdict:  fetch.Evaluate(rosterSources, outcomes),
		}, nil
	}

	requested := make(map[string]bool, len(rosterSources))
	for _, name := range rosterSources {
		requested[name] = true
	}
	composites, err := view.Assemble(enrollmentOutcome.Records, rosterJoins, outcomes.Collections(), requested)
	if err != nil {
		return nil, err
	}
	if unresolved := view.CountUnknown(composites); unresolved > 0 {
		s.logger.Warn("roster rendered with unresolved references",
			zap.String("course_id", courseID),
			zap.Int("unresolved", unresolved),
			zap.String("code", appErrors.ErrReferenceUnresolved.Code))
	}

	entries := make([]dto.RosterEntry, 0, len(composites))
	for _, composite := range composites {
		entries = append(entries, dto.RosterEntry{
			EnrollmentID: composite.Primary.ID(),
			Status:       composite.Primary.String("status"),
			Student:      composite.Joined["student"],
			Course:       composite.Joined["course"],
			Section:      composite.Joined["section"],
		})
	}

	rollups, err := s.rollups(enrollmentOutcome.Records)
	if err != nil {
		s.logger.Warn("roster rollup skipped", zap.String("course_id", courseID), zap.Error(err))
		rollups = nil
	}

	return &dto.RosterResponse{
		CourseID: courseID,
		Entries:  entries,
		Verdict:  fetch.Evaluate(rosterSources, outcomes),
		Rollups:  rollups,
	}, nil
}

func (s *RosterService) taskWithQuery(name string, query url.Values) fetch.Task {
	return fetch.Task{
		Source: name,
		Run: func(ctx context.Context) ([]models.Record, error) {
			return s.sources.Fetch(ctx, name, query)
		},
	}
}

func (s *RosterService) rollups(records []models.Record) ([]dto.RosterRollup, error) {
	enrollments, err := source.DecodeAs[models.Enrollment](records)
	if err != nil {
		return nil, err
	}
	rollups := stats.RollupEnrollments(enrollments, stats.ByCourse)
	out := make([]dto.RosterRollup, 0, len(rollups))
	for _, rollup := range rollups {
		out = append(out, dto.RosterRollup{
			Key:       rollup.Key,
			Active:    rollup.Active,
			Completed: rollup.Completed,
			Dropped:   rollup.Dropped,
			Total:     rollup.Total,
		})
	}
	return out, nil
}
