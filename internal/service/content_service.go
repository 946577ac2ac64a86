package service

import (
	"context"
	"net/url"
	"sort"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/view"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// ContentService builds the course content tree: modules for a course, then
// lessons per module. The child level cannot start before the parent level
// settles because module identifiers are unknown until then.
type ContentService struct {
	sources     sourceReader
	coordinator *fetch.Coordinator
	logger      *zap.Logger
}

// NewContentService constructs the service.
func NewContentService(sources sourceReader, coordinator *fetch.Coordinator, logger *zap.Logger) *ContentService {
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{sources: sources, coordinator: coordinator, logger: logger}
}

// CourseOutline assembles the two-level content tree for one course. A failed
// lesson batch for one module is recorded on that module alone and never
// blocks its siblings.
func (s *ContentService) CourseOutline(ctx context.Context, session models.Session, courseID string) (*dto.CourseOutlineResponse, error) {
	if courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}

	moduleRecords, err := s.sources.Fetch(ctx, models.SourceModules, url.Values{"course": {courseID}})
	if err != nil {
		// Parent level failed: the whole outline is unavailable.
		return &dto.CourseOutlineResponse{
			CourseID: courseID,
			Modules:  []dto.OutlineModule{},
			Verdict:  fetch.Verdict{Status: fetch.StatusUnavailable, FailedSources: []string{models.SourceModules}},
		}, nil
	}

	moduleIDs := make([]string, 0, len(moduleRecords))
	moduleByID := make(map[string]models.Record, len(moduleRecords))
	for _, record := range moduleRecords {
		if id := record.ID(); id != "" {
			moduleIDs = append(moduleIDs, id)
			moduleByID[id] = record
		}
	}

	batches, err := s.coordinator.GatherChildren(ctx, moduleIDs, func(ctx context.Context, moduleID string) ([]models.Record, error) {
		return s.sources.Fetch(ctx, models.SourceLessons, url.Values{"module": {moduleID}})
	})
	if err != nil {
		return nil, err
	}

	outline := make([]dto.OutlineModule, 0, len(batches))
	anyLessonFailure := false
	for _, batch := range batches {
		entry := dto.OutlineModule{Module: moduleByID[batch.ParentID], Lessons: []models.Record{}}
		if batch.Err != nil {
			anyLessonFailure = true
			entry.FetchError = batch.Err.Error()
		} else {
			// Grouping by the normalised module reference keeps lessons
			// stable regardless of how the reference was encoded, and is
			// idempotent under re-application.
			groups := view.Group(batch.Records, "module")
			if lessons, ok := groups[batch.ParentID]; ok {
				entry.Lessons = lessons
			}
			sortLessons(entry.Lessons)
		}
		outline = append(outline, entry)
	}

	verdict := fetch.Verdict{Status: fetch.StatusComplete}
	if anyLessonFailure {
		verdict = fetch.Verdict{Status: fetch.StatusDegraded, FailedSources: []string{models.SourceLessons}}
	}
	return &dto.CourseOutlineResponse{CourseID: courseID, Modules: outline, Verdict: verdict}, nil
}

func sortLessons(lessons []models.Record) {
	sort.SliceStable(lessons, func(i, j int) bool {
		a, _ := lessons[i].Float("order")
		b, _ := lessons[j].Float("order")
		return a < b
	})
}
