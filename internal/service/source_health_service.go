package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
)

type healthStore interface {
	Record(ctx context.Context, status models.SourceStatus) error
	All(ctx context.Context, sources []string) ([]models.SourceStatus, error)
}

// SourceHealthService keeps the last observed fetch status per upstream
// source and serves it to the health endpoint. Recording is best effort;
// a broken ledger never fails an aggregation.
type SourceHealthService struct {
	store  healthStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSourceHealthService constructs the service.
func NewSourceHealthService(store healthStore, logger *zap.Logger) *SourceHealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SourceHealthService{store: store, logger: logger, now: time.Now}
}

// RecordOutcomes persists the status of every settled source.
func (s *SourceHealthService) RecordOutcomes(ctx context.Context, outcomes fetch.Outcomes) {
	if s == nil || s.store == nil {
		return
	}
	observedAt := s.now().UTC().Unix()
	for source, outcome := range outcomes {
		status := models.SourceStatus{
			Source:     source,
			Healthy:    outcome.Err == nil,
			ObservedAt: observedAt,
		}
		if outcome.Err != nil {
			status.Error = outcome.Err.Error()
		}
		if err := s.store.Record(ctx, status); err != nil {
			s.logger.Warn("source status not recorded", zap.String("source", source), zap.Error(err))
		}
	}
}

// List returns the last recorded status for every known source.
func (s *SourceHealthService) List(ctx context.Context) ([]models.SourceStatus, error) {
	if s.store == nil {
		return []models.SourceStatus{}, nil
	}
	return s.store.All(ctx, models.KnownSources)
}
