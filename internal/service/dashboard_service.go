package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/stats"
)

// dashboardSources are the counters rendered on the landing page.
var dashboardSources = []string{
	models.SourceStudents,
	models.SourceInstructors,
	models.SourceCourses,
	models.SourceEnrollments,
	models.SourceAnnouncements,
}

// DashboardService composes the overview counters. Every request refetches;
// a failed source reports zero with a degraded flag rather than a stale
// number.
type DashboardService struct {
	sources     sourceReader
	coordinator *fetch.Coordinator
	health      healthRecorder
	logger      *zap.Logger
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Sources     sourceReader
	Coordinator *fetch.Coordinator
	Health      healthRecorder
	Logger      *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	coordinator := params.Coordinator
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		sources:     params.Sources,
		coordinator: coordinator,
		health:      params.Health,
		logger:      logger,
	}
}

// Overview returns the dashboard counters for the session. Announcements
// count only active ones; every other source counts all records.
func (s *DashboardService) Overview(ctx context.Context, session models.Session) (*dto.DashboardOverviewResponse, error) {
	tasks, err := s.sources.Tasks(dashboardSources, nil)
	if err != nil {
		return nil, err
	}
	outcomes, err := s.coordinator.Gather(ctx, tasks)
	if err != nil {
		return nil, err
	}
	if s.health != nil {
		s.health.RecordOutcomes(ctx, outcomes)
	}

	counters := countDashboard(outcomes)
	verdict := fetch.Evaluate(dashboardSources, outcomes)
	if len(counters.Degraded) > 0 {
		s.logger.Warn("dashboard degraded",
			zap.String("user_id", session.UserID),
			zap.Strings("failed_sources", counters.Degraded))
	}
	return &dto.DashboardOverviewResponse{
		Counts:   counters.Counts,
		Degraded: counters.Degraded,
		Status:   verdict.Status,
	}, nil
}

func countDashboard(outcomes fetch.Outcomes) stats.DashboardCounters {
	return stats.Counters(dashboardSources, outcomes, func(source string) func(record map[string]interface{}) bool {
		if source != models.SourceAnnouncements {
			return nil
		}
		return func(record map[string]interface{}) bool {
			active, _ := record["active"].(bool)
			return active
		}
	})
}
