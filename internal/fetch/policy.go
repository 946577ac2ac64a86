package fetch

import "sort"

// ViewStatus classifies an assembled view against its source outcomes.
type ViewStatus string

const (
	// StatusComplete: every required source fetched successfully.
	StatusComplete ViewStatus = "complete"
	// StatusDegraded: at least one required source failed but the view can
	// still render with Unknown placeholders.
	StatusDegraded ViewStatus = "degraded"
	// StatusUnavailable: every required source failed; nothing to render.
	StatusUnavailable ViewStatus = "unavailable"
)

// Verdict is the partial-result decision for one view assembly.
type Verdict struct {
	Status        ViewStatus `json:"status"`
	FailedSources []string   `json:"failed_sources,omitempty"`
}

// Evaluate decides whether a view is complete, degraded, or unavailable given
// the per-source outcomes of its required sources. Sources the view never
// joins against do not influence the verdict.
func Evaluate(required []string, outcomes Outcomes) Verdict {
	var failed []string
	for _, source := range required {
		out, ok := outcomes[source]
		if !ok || !out.OK() {
			failed = append(failed, source)
		}
	}
	sort.Strings(failed)

	switch {
	case len(failed) == 0:
		return Verdict{Status: StatusComplete}
	case len(failed) == len(required):
		return Verdict{Status: StatusUnavailable, FailedSources: failed}
	default:
		return Verdict{Status: StatusDegraded, FailedSources: failed}
	}
}
