package dto

import (
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/stats"
)

// CourseReportResponse aggregates enrollment and grading for one course.
type CourseReportResponse struct {
	CourseID    string                   `json:"course_id"`
	Enrollments []stats.EnrollmentRollup `json:"enrollments"`
	Grades      []stats.GradeRollup      `json:"grades"`
	Verdict     fetch.Verdict            `json:"verdict"`
}

// InstructorReportResponse aggregates load across an instructor's sections.
type InstructorReportResponse struct {
	Instructors []stats.InstructorRollup `json:"instructors"`
	Verdict     fetch.Verdict            `json:"verdict"`
}

// StudentReportResponse aggregates one student's enrollments and grades.
type StudentReportResponse struct {
	StudentID   string                    `json:"student_id"`
	Enrollments []stats.EnrollmentRollup  `json:"enrollments"`
	Grades      []stats.GradeEntry        `json:"grades"`
	Attendance  []stats.AttendanceSummary `json:"attendance,omitempty"`
	Verdict     fetch.Verdict             `json:"verdict"`
}

// AttendanceReportResponse carries per-student attendance statistics for one
// section.
type AttendanceReportResponse struct {
	SectionID     string                    `json:"section_id"`
	TotalSessions int                       `json:"total_sessions"`
	Students      []stats.AttendanceSummary `json:"students"`
	Verdict       fetch.Verdict             `json:"verdict"`
}

// ExportJobResponse describes one queued or finished export.
type ExportJobResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	Progress  int     `json:"progress"`
	ResultURL *string `json:"result_url,omitempty"`
}
