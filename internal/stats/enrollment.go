package stats

import (
	"sort"

	"github.com/alifdwt/lms-bff-api/internal/models"
)

// EnrollmentRollup buckets enrollment counts for one grouping key.
type EnrollmentRollup struct {
	Key       string `json:"key"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
	Dropped   int    `json:"dropped"`
	Total     int    `json:"total"`
}

// RollupEnrollments groups enrollments by the key extracted from each record
// and buckets them by status. The enrolled/active conflation into one bucket
// is deliberate and must not diverge.
func RollupEnrollments(enrollments []models.Enrollment, keyOf func(models.Enrollment) string) []EnrollmentRollup {
	byKey := make(map[string]*EnrollmentRollup)
	for _, enrollment := range enrollments {
		key := keyOf(enrollment)
		if key == "" {
			continue
		}
		rollup, ok := byKey[key]
		if !ok {
			rollup = &EnrollmentRollup{Key: key}
			byKey[key] = rollup
		}
		rollup.Total++
		switch enrollment.Status.Bucket() {
		case models.BucketActive:
			rollup.Active++
		case models.BucketCompleted:
			rollup.Completed++
		default:
			rollup.Dropped++
		}
	}

	rollups := make([]EnrollmentRollup, 0, len(byKey))
	for _, rollup := range byKey {
		rollups = append(rollups, *rollup)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Key < rollups[j].Key })
	return rollups
}

// ByCourse keys an enrollment by its course reference.
func ByCourse(e models.Enrollment) string { return e.Course.ID }

// ByStudent keys an enrollment by its student reference.
func ByStudent(e models.Enrollment) string { return e.Student.ID }

// InstructorRollup aggregates enrollment load across all sections taught by
// one instructor.
type InstructorRollup struct {
	InstructorID string `json:"instructor_id"`
	Sections     int    `json:"sections"`
	Enrolled     int    `json:"enrolled"`
	Active       int    `json:"active"`
	Completed    int    `json:"completed"`
	Dropped      int    `json:"dropped"`
}

// RollupInstructors sums enrolled headcount over every section an instructor
// teaches, plus status buckets over the enrollments joined to those sections.
func RollupInstructors(sections []models.Section, enrollments []models.Enrollment) []InstructorRollup {
	sectionInstructor := make(map[string]string, len(sections))
	byInstructor := make(map[string]*InstructorRollup)

	rollupFor := func(instructorID string) *InstructorRollup {
		rollup, ok := byInstructor[instructorID]
		if !ok {
			rollup = &InstructorRollup{InstructorID: instructorID}
			byInstructor[instructorID] = rollup
		}
		return rollup
	}

	for _, section := range sections {
		instructorID := section.Instructor.ID
		if instructorID == "" {
			continue
		}
		sectionInstructor[section.ID] = instructorID
		rollup := rollupFor(instructorID)
		rollup.Sections++
		rollup.Enrolled += section.Enrolled
	}

	for _, enrollment := range enrollments {
		instructorID, ok := sectionInstructor[enrollment.Section.ID]
		if !ok {
			continue
		}
		rollup := rollupFor(instructorID)
		switch enrollment.Status.Bucket() {
		case models.BucketActive:
			rollup.Active++
		case models.BucketCompleted:
			rollup.Completed++
		default:
			rollup.Dropped++
		}
	}

	rollups := make([]InstructorRollup, 0, len(byInstructor))
	for _, rollup := range byInstructor {
		rollups = append(rollups, *rollup)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].InstructorID < rollups[j].InstructorID })
	return rollups
}
