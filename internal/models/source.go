package models

// Source collection names. Each is owned and mutated exclusively by one
// upstream service; this layer only reads snapshots.
const (
	SourceStudents      = "students"
	SourceInstructors   = "instructors"
	SourceCourses       = "courses"
	SourceSections      = "sections"
	SourceEnrollments   = "enrollments"
	SourceModules       = "modules"
	SourceLessons       = "lessons"
	SourceActivities    = "activities"
	SourceSubmissions   = "submissions"
	SourceAttendance    = "attendance"
	SourcePayments      = "payments"
	SourceAnnouncements = "announcements"
)

// KnownSources lists every source name the registry can serve.
var KnownSources = []string{
	SourceStudents,
	SourceInstructors,
	SourceCourses,
	SourceSections,
	SourceEnrollments,
	SourceModules,
	SourceLessons,
	SourceActivities,
	SourceSubmissions,
	SourceAttendance,
	SourcePayments,
	SourceAnnouncements,
}

// SourceStatus is the last-known fetch outcome for one source, kept for
// operational visibility. It is never used to serve stale view data.
type SourceStatus struct {
	Source     string `json:"source"`
	Healthy    bool   `json:"healthy"`
	Error      string `json:"error,omitempty"`
	ObservedAt int64  `json:"observed_at"`
}
