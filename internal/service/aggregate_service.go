package service

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/dto"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// sourceReader is the read contract services need from the source registry.
type sourceReader interface {
	Tasks(sources []string, query url.Values) ([]fetch.Task, error)
	Fetch(ctx context.Context, source string, query url.Values) ([]models.Record, error)
	Known(source string) bool
}

// sourceWriter is the write-passthrough contract. A write lands on exactly
// one owning service or not at all.
type sourceWriter interface {
	CreateRecord(ctx context.Context, source string, payload interface{}) (models.Record, error)
	UpdateRecord(ctx context.Context, source, id string, payload interface{}) (models.Record, error)
	DeleteRecord(ctx context.Context, source, id string) error
	GetRecord(ctx context.Context, source, id string) (models.Record, error)
}

// healthRecorder receives settled outcomes for operational tracking.
type healthRecorder interface {
	RecordOutcomes(ctx context.Context, outcomes fetch.Outcomes)
}

// AggregateService exposes the generic multi-source read: fetch the named
// collections concurrently, isolate per-source failures, and return raw
// snapshots plus failure annotations. Partial failure never raises; only a
// malformed request does.
type AggregateService struct {
	sources     sourceReader
	coordinator *fetch.Coordinator
	health      healthRecorder
	logger      *zap.Logger
}

// NewAggregateService constructs the service.
func NewAggregateService(sources sourceReader, coordinator *fetch.Coordinator, health healthRecorder, logger *zap.Logger) *AggregateService {
	if coordinator == nil {
		coordinator = fetch.NewCoordinator(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregateService{sources: sources, coordinator: coordinator, health: health, logger: logger}
}

// Aggregate fetches the requested sources for the session. Each view assembly
// is a fresh aggregation; nothing is cached across requests.
func (s *AggregateService) Aggregate(ctx context.Context, session models.Session, sourcesNeeded []string) (*dto.AggregateResponse, error) {
	if len(sourcesNeeded) == 0 {
		return nil, appErrors.Clone(appErrors.ErrAggregationInput, "at least one source is required")
	}
	tasks, err := s.sources.Tasks(sourcesNeeded, nil)
	if err != nil {
		return nil, err
	}

	outcomes, err := s.coordinator.Gather(ctx, tasks)
	if err != nil {
		return nil, err
	}
	s.record(ctx, outcomes)

	response := &dto.AggregateResponse{
		Views:    make(map[string][]models.Record, len(sourcesNeeded)),
		Failures: Failures(outcomes, sourcesNeeded),
		Status:   fetch.Evaluate(sourcesNeeded, outcomes).Status,
	}
	for _, name := range sourcesNeeded {
		if records := outcomes.Records(name); records != nil {
			response.Views[name] = records
		}
	}
	if len(response.Failures) > 0 {
		s.logger.Warn("aggregation degraded",
			zap.String("user_id", session.UserID),
			zap.Strings("sources", sourcesNeeded),
			zap.Int("failures", len(response.Failures)))
	}
	return response, nil
}

func (s *AggregateService) record(ctx context.Context, outcomes fetch.Outcomes) {
	if s.health != nil {
		s.health.RecordOutcomes(ctx, outcomes)
	}
}

// Failures converts failed outcomes into response annotations, in request
// order for stable payloads.
func Failures(outcomes fetch.Outcomes, requested []string) []dto.SourceFailure {
	failures := make([]dto.SourceFailure, 0)
	for _, name := range requested {
		if out, ok := outcomes.Get(name); ok && !out.OK() {
			failures = append(failures, dto.SourceFailure{Source: name, Error: out.Err.Error()})
		}
	}
	return failures
}
