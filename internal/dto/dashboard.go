package dto

import (
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
)

// SourceFailure reports one failed source in an aggregation response.
type SourceFailure struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// AggregateResponse is the generic multi-source read result. Views always
// render; failures annotate what is missing.
type AggregateResponse struct {
	Views    map[string][]models.Record `json:"views"`
	Failures []SourceFailure            `json:"failures"`
	Status   fetch.ViewStatus           `json:"status"`
}

// DashboardOverviewResponse carries the landing-page counters.
type DashboardOverviewResponse struct {
	Counts   map[string]int   `json:"counts"`
	Degraded []string         `json:"degraded,omitempty"`
	Status   fetch.ViewStatus `json:"status"`
}

// SourceHealthResponse lists last-known per-source statuses.
type SourceHealthResponse struct {
	Sources []models.SourceStatus `json:"sources"`
}
