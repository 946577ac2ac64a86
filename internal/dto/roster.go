package dto

import (
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
)

// RosterEntry is one enrollment widened with student, course, and section
// detail. A missing side renders as the Unknown placeholder, never an error.
type RosterEntry struct {
	EnrollmentID string        `json:"enrollment_id"`
	Status       string        `json:"status"`
	Student      models.Record `json:"student"`
	Course       models.Record `json:"course"`
	Section      models.Record `json:"section"`
}

// RosterResponse is the assembled roster for one course.
type RosterResponse struct {
	CourseID string         `json:"course_id"`
	Entries  []RosterEntry  `json:"entries"`
	Verdict  fetch.Verdict  `json:"verdict"`
	Rollups  []RosterRollup `json:"rollups,omitempty"`
}

// RosterRollup buckets the roster's enrollments by status.
type RosterRollup struct {
	Key       string `json:"key"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Dropped   int    `json:"dropped"`
	Total     int    `json:"total"`
}
