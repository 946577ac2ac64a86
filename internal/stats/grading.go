package stats

import (
	"sort"

	"github.com/alifdwt/lms-bff-api/internal/models"
)

// GradeEntry is one submission's derived grading figure. Percentage is nil
// for ungraded submissions, which are excluded from percentage aggregates.
type GradeEntry struct {
	SubmissionID     string   `json:"submission_id"`
	StudentID        string   `json:"student_id"`
	ActivityID       string   `json:"activity_id"`
	Score            *float64 `json:"score,omitempty"`
	Percentage       *float64 `json:"percentage,omitempty"`
	IsLate           bool     `json:"is_late"`
	ProjectedPenalty float64  `json:"projected_penalty,omitempty"`
}

// GradeRollup summarises grading for one activity.
type GradeRollup struct {
	ActivityID        string   `json:"activity_id"`
	Submissions       int      `json:"submissions"`
	Graded            int      `json:"graded"`
	Ungraded          int      `json:"ungraded"`
	Late              int      `json:"late"`
	AveragePercentage *float64 `json:"average_percentage,omitempty"`
}

// Percentage derives score/totalPoints*100, nil when the submission is
// ungraded or the activity has no points configured.
func Percentage(submission models.Submission, activity models.Activity) *float64 {
	if !submission.Graded() || activity.TotalPoints <= 0 {
		return nil
	}
	pct := *submission.Score / activity.TotalPoints * 100
	return &pct
}

// GradeEntries derives per-submission figures given the activity each
// submission points at. Submissions whose activity reference dangles still
// produce an entry, just without a percentage.
func GradeEntries(submissions []models.Submission, activities map[string]models.Activity) []GradeEntry {
	entries := make([]GradeEntry, 0, len(submissions))
	for _, submission := range submissions {
		entry := GradeEntry{
			SubmissionID: submission.ID,
			StudentID:    submission.Student.ID,
			ActivityID:   submission.Activity.ID,
			Score:        submission.Score,
			IsLate:       submission.IsLate,
		}
		if activity, ok := activities[submission.Activity.ID]; ok {
			entry.Percentage = Percentage(submission, activity)
			entry.ProjectedPenalty = submission.ProjectedPenalty(activity)
		}
		entries = append(entries, entry)
	}
	return entries
}

// RollupGrades aggregates entries per activity. Averages cover graded
// submissions only.
func RollupGrades(entries []GradeEntry) []GradeRollup {
	byActivity := make(map[string]*GradeRollup)
	sums := make(map[string]float64)
	for _, entry := range entries {
		if entry.ActivityID == "" {
			continue
		}
		rollup, ok := byActivity[entry.ActivityID]
		if !ok {
			rollup = &GradeRollup{ActivityID: entry.ActivityID}
			byActivity[entry.ActivityID] = rollup
		}
		rollup.Submissions++
		if entry.IsLate {
			rollup.Late++
		}
		if entry.Percentage != nil {
			rollup.Graded++
			sums[entry.ActivityID] += *entry.Percentage
		} else {
			rollup.Ungraded++
		}
	}

	rollups := make([]GradeRollup, 0, len(byActivity))
	for activityID, rollup := range byActivity {
		if rollup.Graded > 0 {
			avg := sums[activityID] / float64(rollup.Graded)
			rollup.AveragePercentage = &avg
		}
		rollups = append(rollups, *rollup)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].ActivityID < rollups[j].ActivityID })
	return rollups
}
