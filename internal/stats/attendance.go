package stats

import (
	"math"
	"sort"

	"github.com/alifdwt/lms-bff-api/internal/models"
)

// AttendanceSummary holds one student's counts over a section's recorded
// sessions. Rate is nil when no sessions were recorded: undefined, not zero.
type AttendanceSummary struct {
	StudentID     string   `json:"student_id"`
	Present       int      `json:"present"`
	Late          int      `json:"late"`
	Excused       int      `json:"excused"`
	Absent        int      `json:"absent"`
	TotalSessions int      `json:"total_sessions"`
	Rate          *float64 `json:"rate,omitempty"`
}

// AttendanceRate computes round(100 * (present+late) / totalSessions). With
// zero sessions the rate is undefined and nil is returned rather than NaN.
func AttendanceRate(present, late, totalSessions int) *float64 {
	if totalSessions <= 0 {
		return nil
	}
	rate := math.Round(100 * float64(present+late) / float64(totalSessions))
	return &rate
}

// SummarizeAttendance computes per-student counts across the recorded
// sessions of one section. Only dates where a session was actually recorded
// contribute: a student with no record on an unrecorded date is not silently
// counted absent. Within a recorded session, a roster member without an
// explicit mark defaults to absent.
func SummarizeAttendance(roster []string, sessions []models.AttendanceSession) []AttendanceSummary {
	totalSessions := len(sessions)
	summaries := make([]AttendanceSummary, 0, len(roster))
	for _, studentID := range roster {
		summary := AttendanceSummary{StudentID: studentID, TotalSessions: totalSessions}
		for _, session := range sessions {
			switch session.StatusFor(studentID) {
			case models.AttendanceStatusPresent:
				summary.Present++
			case models.AttendanceStatusLate:
				summary.Late++
			case models.AttendanceStatusExcused:
				summary.Excused++
			default:
				summary.Absent++
			}
		}
		summary.Rate = AttendanceRate(summary.Present, summary.Late, totalSessions)
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].StudentID < summaries[j].StudentID })
	return summaries
}
