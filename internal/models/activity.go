package models

import "time"

// SubmissionStatus tracks the grading workflow.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
)

// Activity is a gradeable course activity owned by the assessment service.
type Activity struct {
	ID          string    `json:"id"`
	Course      Reference `json:"course"`
	Title       string    `json:"title"`
	TotalPoints float64   `json:"total_points"`
	DueDate     time.Time `json:"due_date"`

	// LatePenaltyPerDay is a configured percentage deduction per day late.
	// It is stored here but not automatically subtracted from entered
	// scores; see ProjectedPenalty.
	LatePenaltyPerDay float64 `json:"late_penalty_per_day"`
}

// Submission is a student's answer to an activity. Score is nil until graded.
type Submission struct {
	ID          string           `json:"id"`
	Activity    Reference        `json:"activity"`
	Student     Reference        `json:"student"`
	Status      SubmissionStatus `json:"status"`
	Score       *float64         `json:"score,omitempty"`
	IsLate      bool             `json:"is_late"`
	SubmittedAt time.Time        `json:"submitted_at"`
	DaysLate    int              `json:"days_late,omitempty"`
}

// Graded reports whether the submission carries a score.
func (s Submission) Graded() bool {
	return s.Status == SubmissionStatusGraded && s.Score != nil
}

// ProjectedPenalty computes the percentage deduction the configured
// late-penalty would imply for this submission. It is display-only:
// instructors apply any penalty to the score themselves.
func (s Submission) ProjectedPenalty(activity Activity) float64 {
	if !s.IsLate || activity.LatePenaltyPerDay <= 0 {
		return 0
	}
	days := s.DaysLate
	if days <= 0 {
		days = 1
	}
	penalty := activity.LatePenaltyPerDay * float64(days)
	if penalty > 100 {
		return 100
	}
	return penalty
}
