package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentBuckets(t *testing.T) {
	// enrolled and active are deliberately one bucket; rollups count them
	// together as "currently taking".
	assert.Equal(t, BucketActive, EnrollmentStatusEnrolled.Bucket())
	assert.Equal(t, BucketActive, EnrollmentStatusActive.Bucket())
	assert.Equal(t, BucketCompleted, EnrollmentStatusCompleted.Bucket())
	assert.Equal(t, BucketDropped, EnrollmentStatusDropped.Bucket())
	assert.Equal(t, BucketDropped, EnrollmentStatusWithdrawn.Bucket())
}

func TestEnrollmentStatusValid(t *testing.T) {
	for _, s := range []EnrollmentStatus{
		EnrollmentStatusEnrolled, EnrollmentStatusActive, EnrollmentStatusCompleted,
		EnrollmentStatusDropped, EnrollmentStatusWithdrawn,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, EnrollmentStatus("paused").Valid())
}

func TestAttendanceSessionStatusFor(t *testing.T) {
	session := AttendanceSession{
		ID:   "sess1",
		Date: "2026-03-02",
		Marks: []AttendanceMark{
			{Student: Reference{ID: "s1"}, Status: AttendanceStatusLate},
			{Student: Reference{ID: "s2"}, Status: AttendanceStatus("unknown")},
		},
	}
	assert.Equal(t, AttendanceStatusLate, session.StatusFor("s1"))
	// Invalid mark values degrade to absent.
	assert.Equal(t, AttendanceStatusAbsent, session.StatusFor("s2"))
	// Roster members with no entry on a recorded session are absent.
	assert.Equal(t, AttendanceStatusAbsent, session.StatusFor("s3"))
}

func TestSubmissionGraded(t *testing.T) {
	score := 80.0
	assert.True(t, Submission{Status: SubmissionStatusGraded, Score: &score}.Graded())
	assert.False(t, Submission{Status: SubmissionStatusSubmitted, Score: &score}.Graded())
	assert.False(t, Submission{Status: SubmissionStatusGraded}.Graded())
}

func TestProjectedPenaltyIsDisplayOnly(t *testing.T) {
	activity := Activity{TotalPoints: 100, LatePenaltyPerDay: 10}

	onTime := Submission{IsLate: false, DaysLate: 0}
	assert.Zero(t, onTime.ProjectedPenalty(activity))

	twoDaysLate := Submission{IsLate: true, DaysLate: 2}
	assert.Equal(t, 20.0, twoDaysLate.ProjectedPenalty(activity))

	// Flagged late with no day count still projects one day.
	lateNoDays := Submission{IsLate: true}
	assert.Equal(t, 10.0, lateNoDays.ProjectedPenalty(activity))

	// Capped at a full deduction.
	veryLate := Submission{IsLate: true, DaysLate: 30}
	assert.Equal(t, 100.0, veryLate.ProjectedPenalty(activity))
}
