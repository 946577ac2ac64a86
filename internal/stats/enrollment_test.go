package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alifdwt/lms-bff-api/internal/models"
)

func enrollment(course, student string, status models.EnrollmentStatus) models.Enrollment {
	return models.Enrollment{
		Course:  models.Reference{ID: course},
		Student: models.Reference{ID: student},
		Status:  status,
	}
}

func TestRollupEnrollmentsByCourse(t *testing.T) {
	enrollments := []models.Enrollment{
		enrollment("c1", "s1", models.EnrollmentStatusEnrolled),
		enrollment("c1", "s2", models.EnrollmentStatusActive),
		enrollment("c1", "s3", models.EnrollmentStatusCompleted),
		enrollment("c1", "s4", models.EnrollmentStatusWithdrawn),
		enrollment("c2", "s1", models.EnrollmentStatusDropped),
	}

	rollups := RollupEnrollments(enrollments, ByCourse)
	require.Len(t, rollups, 2)

	c1 := rollups[0]
	assert.Equal(t, "c1", c1.Key)
	// enrolled and active land in the same bucket.
	assert.Equal(t, 2, c1.Active)
	assert.Equal(t, 1, c1.Completed)
	assert.Equal(t, 1, c1.Dropped)
	assert.Equal(t, 4, c1.Total)

	c2 := rollups[1]
	assert.Equal(t, 1, c2.Dropped)
	assert.Equal(t, 1, c2.Total)
}

func TestRollupEnrollmentsSkipsDanglingKey(t *testing.T) {
	rollups := RollupEnrollments([]models.Enrollment{
		enrollment("", "s1", models.EnrollmentStatusActive),
	}, ByCourse)
	assert.Empty(t, rollups)
}

func TestRollupInstructors(t *testing.T) {
	sections := []models.Section{
		{ID: "sec1", Instructor: models.Reference{ID: "i1"}, Enrolled: 20},
		{ID: "sec2", Instructor: models.Reference{ID: "i1"}, Enrolled: 15},
		{ID: "sec3", Instructor: models.Reference{ID: "i2"}, Enrolled: 10},
		{ID: "sec4"}, // no instructor, excluded
	}
	enrollments := []models.Enrollment{
		{Section: models.Reference{ID: "sec1"}, Status: models.EnrollmentStatusEnrolled},
		{Section: models.Reference{ID: "sec2"}, Status: models.EnrollmentStatusCompleted},
		{Section: models.Reference{ID: "sec3"}, Status: models.EnrollmentStatusDropped},
		{Section: models.Reference{ID: "missing"}, Status: models.EnrollmentStatusActive},
	}

	rollups := RollupInstructors(sections, enrollments)
	require.Len(t, rollups, 2)

	i1 := rollups[0]
	assert.Equal(t, "i1", i1.InstructorID)
	assert.Equal(t, 2, i1.Sections)
	assert.Equal(t, 35, i1.Enrolled)
	assert.Equal(t, 1, i1.Active)
	assert.Equal(t, 1, i1.Completed)

	i2 := rollups[1]
	assert.Equal(t, 1, i2.Sections)
	assert.Equal(t, 10, i2.Enrolled)
	assert.Equal(t, 1, i2.Dropped)
}
