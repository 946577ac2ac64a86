package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

func rosterFixture() *fakeSources {
	sources := newFakeSources()
	sources.records[models.SourceEnrollments] = []models.Record{
		{"id": "e1", "student": "s1", "course": "c1", "section": "sec1", "status": "active"},
		{"id": "e2", "student": map[string]interface{}{"id": "s2", "name": "Budi"}, "course": "c1", "section": "sec1", "status": "completed"},
		{"id": "e3", "student": "s-gone", "course": "c1", "section": "sec1", "status": "enrolled"},
	}
	sources.records[models.SourceStudents] = []models.Record{
		{"id": "s1", "name": "Ani"},
		{"id": "s2", "name": "Budi"},
	}
	sources.records[models.SourceCourses] = []models.Record{
		{"id": "c1", "name": "Algebra"},
	}
	sources.records[models.SourceSections] = []models.Record{
		{"id": "sec1", "name": "Morning"},
	}
	return sources
}

func TestCourseRosterWidensEnrollments(t *testing.T) {
	svc := NewRosterService(rosterFixture(), nil, nil, zap.NewNop())

	roster, err := svc.CourseRoster(context.Background(), testSession(), "c1")
	require.NoError(t, err)
	assert.Equal(t, fetch.StatusComplete, roster.Verdict.Status)
	require.Len(t, roster.Entries, 3)

	assert.Equal(t, "e1", roster.Entries[0].EnrollmentID)
	assert.Equal(t, "Ani", roster.Entries[0].Student.String("name"))
	assert.Equal(t, "Algebra", roster.Entries[0].Course.String("name"))
	assert.Equal(t, "Morning", roster.Entries[0].Section.String("name"))

	// dangling student reference renders Unknown, row survives
	gone := roster.Entries[2]
	assert.Equal(t, "s-gone", gone.Student.ID())
	assert.Equal(t, "Unknown", gone.Student.String("name"))
	assert.True(t, gone.Student.Bool("unknown"))

	require.Len(t, roster.Rollups, 1)
	assert.Equal(t, "c1", roster.Rollups[0].Key)
	assert.Equal(t, 2, roster.Rollups[0].Active)
	assert.Equal(t, 1, roster.Rollups[0].Completed)
}

func TestCourseRosterDegradedJoinSource(t *testing.T) {
	sources := rosterFixture()
	delete(sources.records, models.SourceStudents)
	sources.fail[models.SourceStudents] = errors.New("identity down")

	svc := NewRosterService(sources, nil, nil, zap.NewNop())

	roster, err := svc.CourseRoster(context.Background(), testSession(), "c1")
	require.NoError(t, err)
	assert.Equal(t, fetch.StatusDegraded, roster.Verdict.Status)
	assert.Equal(t, []string{models.SourceStudents}, roster.Verdict.FailedSources)
	require.Len(t, roster.Entries, 3)
	for _, entry := range roster.Entries {
		assert.Equal(t, "Unknown", entry.Student.String("name"))
		assert.Equal(t, "Algebra", entry.Course.String("name"))
	}
}

func TestCourseRosterPrimarySourceDown(t *testing.T) {
	sources := rosterFixture()
	delete(sources.records, models.SourceEnrollments)
	sources.fail[models.SourceEnrollments] = errors.New("courses down")

	svc := NewRosterService(sources, nil, nil, zap.NewNop())

	roster, err := svc.CourseRoster(context.Background(), testSession(), "c1")
	require.NoError(t, err)
	assert.Empty(t, roster.Entries)
	assert.Equal(t, fetch.StatusDegraded, roster.Verdict.Status)
	assert.Contains(t, roster.Verdict.FailedSources, models.SourceEnrollments)
}

func TestCourseRosterRequiresCourseID(t *testing.T) {
	svc := NewRosterService(newFakeSources(), nil, nil, zap.NewNop())

	_, err := svc.CourseRoster(context.Background(), testSession(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
