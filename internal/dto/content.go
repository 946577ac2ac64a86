package dto

import (
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
)

// OutlineModule is one course module with its lessons grouped underneath.
type OutlineModule struct {
	Module  models.Record   `json:"module"`
	Lessons []models.Record `json:"lessons"`
	// FetchError is set when this module's lesson batch failed; sibling
	// modules are unaffected.
	FetchError string `json:"fetch_error,omitempty"`
}

// CourseOutlineResponse is the two-level content tree for one course.
type CourseOutlineResponse struct {
	CourseID string          `json:"course_id"`
	Modules  []OutlineModule `json:"modules"`
	Verdict  fetch.Verdict   `json:"verdict"`
}
