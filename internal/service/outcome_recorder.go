package service

import (
	"context"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
)

// OutcomeRecorder fans settled fetch outcomes into the Prometheus collectors
// and, when configured, the Redis-backed source health ledger. Every view
// composition path records through it.
type OutcomeRecorder struct {
	health  healthRecorder
	metrics *MetricsService
}

// NewOutcomeRecorder constructs the recorder. health may be nil when the
// ledger is disabled.
func NewOutcomeRecorder(health *SourceHealthService, metrics *MetricsService) *OutcomeRecorder {
	recorder := &OutcomeRecorder{metrics: metrics}
	if health != nil {
		recorder.health = health
	}
	return recorder
}

// RecordOutcomes implements the recording hook the services call after each
// gather.
func (r *OutcomeRecorder) RecordOutcomes(ctx context.Context, outcomes fetch.Outcomes) {
	if r.metrics != nil {
		r.metrics.RecordFetchOutcomes(outcomes)
	}
	if r.health != nil {
		r.health.RecordOutcomes(ctx, outcomes)
	}
}
