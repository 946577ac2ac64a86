package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("students", server.URL, 2*time.Second, nil)
}

func TestClientListDecodesEnvelope(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/students", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"data": [{"id": "s1", "name": "Ani"}, {"id": "s2", "name": "Budi"}],
			"pagination": {"page": 2, "page_size": 2, "total_count": 10}
		}`))
	})

	records, pagination, err := client.List(context.Background(), "/students", url.Values{"page": {"2"}})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "s1", records[0].ID())
	require.NotNil(t, pagination)
	assert.Equal(t, 10, pagination.TotalCount)
}

func TestClientListToleratesBareArray(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": "s1"}]`))
	})

	records, pagination, err := client.List(context.Background(), "/students", nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, pagination)
}

func TestClientStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		wantCode   string
		wantStatus int
	}{
		{"not found", http.StatusNotFound, appErrors.ErrNotFound.Code, http.StatusNotFound},
		{"conflict", http.StatusConflict, appErrors.ErrConflict.Code, http.StatusConflict},
		{"client error", http.StatusUnprocessableEntity, appErrors.ErrValidation.Code, http.StatusUnprocessableEntity},
		{"server error", http.StatusInternalServerError, appErrors.ErrSourceUnavailable.Code, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"success": false, "message": "nope"}`))
			})

			_, err := client.Get(context.Background(), "/students/s1")
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, tc.wantCode, appErr.Code)
			assert.Equal(t, tc.wantStatus, appErr.Status)
			assert.Equal(t, "students", appErr.Source)
		})
	}
}

func TestClientDialFailureIsSourceUnavailable(t *testing.T) {
	client := NewClient("students", "http://127.0.0.1:1", 500*time.Millisecond, nil)

	_, _, err := client.List(context.Background(), "/students", nil)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSourceUnavailable.Code, appErr.Code)
	assert.Equal(t, "students", appErr.Source)
}

func TestClientCreateSendsJSON(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success": true, "data": {"id": "s9", "name": "Citra"}}`))
	})

	record, err := client.Create(context.Background(), "/students", map[string]string{"name": "Citra"})
	require.NoError(t, err)
	assert.Equal(t, "s9", record.ID())
}

func TestDecodeAs(t *testing.T) {
	records := []models.Record{
		{"id": "e1", "course": "c1", "student": "s1", "status": "active"},
		{"id": "e2", "course": map[string]interface{}{"id": "c2", "name": "Algebra"}, "status": "completed"},
	}

	enrollments, err := DecodeAs[models.Enrollment](records)
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	assert.Equal(t, "c1", enrollments[0].Course.ID)
	assert.Equal(t, "c2", enrollments[1].Course.ID)
	assert.Equal(t, models.EnrollmentStatusCompleted, enrollments[1].Status)
}

type recordingObserver struct {
	sources   []string
	durations []time.Duration
}

func (o *recordingObserver) ObserveFetch(source string, duration time.Duration) {
	o.sources = append(o.sources, source)
	o.durations = append(o.durations, duration)
}

func TestClientObservesFetchTiming(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": []}`))
	})
	observer := &recordingObserver{}
	client.Instrument(observer)

	_, _, err := client.List(context.Background(), "/students", nil)
	require.NoError(t, err)

	require.Len(t, observer.sources, 1)
	assert.Equal(t, "students", observer.sources[0])
	assert.GreaterOrEqual(t, observer.durations[0], time.Duration(0))
}

func TestClientObservesFailedFetch(t *testing.T) {
	client := NewClient("students", "http://127.0.0.1:1", time.Second, nil)
	observer := &recordingObserver{}
	client.Instrument(observer)

	_, _, err := client.List(context.Background(), "/students", nil)
	require.Error(t, err)
	require.Len(t, observer.sources, 1)
	assert.Equal(t, "students", observer.sources[0])
}
