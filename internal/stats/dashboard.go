// Package stats computes derived figures over already-assembled views. Every
// function here is pure: no I/O, no clocks, no shared state.
package stats

import (
	"sort"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
)

// DashboardCounters reports per-source record counts for the overview screen.
// A failed source counts 0 and is named in Degraded so the consumer always
// knows which counters it cannot trust.
type DashboardCounters struct {
	Counts   map[string]int `json:"counts"`
	Degraded []string       `json:"degraded,omitempty"`
}

// CountFunc optionally filters which records count for a source (e.g. only
// active announcements). A nil filter counts everything.
type CountFunc func(source string) func(record map[string]interface{}) bool

// Counters tallies the requested sources from their fetch outcomes. Counts
// come only from sources that fetched successfully; a failed source reports
// zero, never a stale or fabricated value.
func Counters(sources []string, outcomes fetch.Outcomes, filter CountFunc) DashboardCounters {
	counters := DashboardCounters{Counts: make(map[string]int, len(sources))}
	for _, source := range sources {
		out, ok := outcomes.Get(source)
		if !ok || !out.OK() {
			counters.Counts[source] = 0
			counters.Degraded = append(counters.Degraded, source)
			continue
		}
		if filter != nil {
			if keep := filter(source); keep != nil {
				n := 0
				for _, rec := range out.Records {
					if keep(rec) {
						n++
					}
				}
				counters.Counts[source] = n
				continue
			}
		}
		counters.Counts[source] = len(out.Records)
	}
	sort.Strings(counters.Degraded)
	return counters
}
