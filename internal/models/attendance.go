package models

// AttendanceStatus is the per (section, date, student) mark.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusExcused, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceMark records one student's status on one session.
type AttendanceMark struct {
	Student Reference        `json:"student"`
	Status  AttendanceStatus `json:"status"`
}

// AttendanceSession is one recorded attendance sheet for a section and date.
// Roster members with no explicit mark on a recorded session default to
// absent; dates with no session recorded contribute nothing to statistics.
type AttendanceSession struct {
	ID      string           `json:"id"`
	Section Reference        `json:"section"`
	Date    string           `json:"date"`
	Marks   []AttendanceMark `json:"marks"`
}

// StatusFor returns the mark for studentID, defaulting to absent when the
// session was recorded without an entry for them.
func (s AttendanceSession) StatusFor(studentID string) AttendanceStatus {
	for _, mark := range s.Marks {
		if mark.Student.ID == studentID {
			if mark.Status.Valid() {
				return mark.Status
			}
			return AttendanceStatusAbsent
		}
	}
	return AttendanceStatusAbsent
}
