package service

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
)

// fakeSources serves canned snapshots per source, failing the ones listed in
// fail. It implements both sourceReader and sourceWriter.
type fakeSources struct {
	records map[string][]models.Record
	fail    map[string]error

	created  map[string]interface{}
	updated  map[string]interface{}
	deleted  []string
	getBack  models.Record
	writeErr error
}

func newFakeSources() *fakeSources {
	return &fakeSources{
		records: map[string][]models.Record{},
		fail:    map[string]error{},
		created: map[string]interface{}{},
		updated: map[string]interface{}{},
	}
}

func (f *fakeSources) Known(source string) bool {
	_, ok := f.records[source]
	if !ok {
		_, ok = f.fail[source]
	}
	return ok
}

func (f *fakeSources) Fetch(_ context.Context, source string, _ url.Values) ([]models.Record, error) {
	if err, ok := f.fail[source]; ok {
		return nil, err
	}
	if records, ok := f.records[source]; ok {
		return records, nil
	}
	return nil, errors.New("unexpected source " + source)
}

func (f *fakeSources) Tasks(sources []string, query url.Values) ([]fetch.Task, error) {
	tasks := make([]fetch.Task, 0, len(sources))
	for _, source := range sources {
		name := source
		tasks = append(tasks, fetch.Task{
			Source: name,
			Run: func(ctx context.Context) ([]models.Record, error) {
				return f.Fetch(ctx, name, query)
			},
		})
	}
	return tasks, nil
}

func (f *fakeSources) CreateRecord(_ context.Context, source string, payload interface{}) (models.Record, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.created[source] = payload
	return models.Record{"id": "created-1"}, nil
}

func (f *fakeSources) UpdateRecord(_ context.Context, source, id string, payload interface{}) (models.Record, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.updated[source+"/"+id] = payload
	return models.Record{"id": id}, nil
}

func (f *fakeSources) DeleteRecord(_ context.Context, source, id string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deleted = append(f.deleted, source+"/"+id)
	return nil
}

func (f *fakeSources) GetRecord(_ context.Context, source, id string) (models.Record, error) {
	if f.getBack != nil {
		return f.getBack, nil
	}
	if err, ok := f.fail[source]; ok {
		return nil, err
	}
	return models.Record{"id": id}, nil
}

type fakeHealthRecorder struct {
	calls int
	last  fetch.Outcomes
}

func (f *fakeHealthRecorder) RecordOutcomes(_ context.Context, outcomes fetch.Outcomes) {
	f.calls++
	f.last = outcomes
}

func nRecords(n int) []models.Record {
	records := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, models.Record{"id": string(rune('a' + i))})
	}
	return records
}

func testSession() models.Session {
	return models.Session{UserID: "u1", Email: "u1@example.com", Role: models.RoleAdmin}
}

func TestDashboardOverviewHealthy(t *testing.T) {
	sources := newFakeSources()
	sources.records[models.SourceStudents] = nRecords(3)
	sources.records[models.SourceInstructors] = nRecords(2)
	sources.records[models.SourceCourses] = nRecords(5)
	sources.records[models.SourceEnrollments] = nRecords(10)
	sources.records[models.SourceAnnouncements] = []models.Record{
		{"id": "a1", "active": true},
		{"id": "a2", "active": false},
		{"id": "a3", "active": true},
	}
	health := &fakeHealthRecorder{}

	svc := NewDashboardService(DashboardServiceParams{
		Sources: sources,
		Health:  health,
		Logger:  zap.NewNop(),
	})

	overview, err := svc.Overview(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, fetch.StatusComplete, overview.Status)
	assert.Empty(t, overview.Degraded)
	assert.Equal(t, 3, overview.Counts[models.SourceStudents])
	assert.Equal(t, 10, overview.Counts[models.SourceEnrollments])
	// only active announcements count
	assert.Equal(t, 2, overview.Counts[models.SourceAnnouncements])
	assert.Equal(t, 1, health.calls)
}

func TestDashboardOverviewDegradedSourceCountsZero(t *testing.T) {
	sources := newFakeSources()
	sources.records[models.SourceStudents] = nRecords(3)
	sources.fail[models.SourceInstructors] = errors.New("connection refused")
	sources.records[models.SourceCourses] = nRecords(5)
	sources.records[models.SourceEnrollments] = nRecords(10)
	sources.records[models.SourceAnnouncements] = nil

	svc := NewDashboardService(DashboardServiceParams{Sources: sources, Logger: zap.NewNop()})

	overview, err := svc.Overview(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, fetch.StatusDegraded, overview.Status)
	assert.Equal(t, []string{models.SourceInstructors}, overview.Degraded)
	assert.Equal(t, 0, overview.Counts[models.SourceInstructors])
	assert.Equal(t, 3, overview.Counts[models.SourceStudents])
}
