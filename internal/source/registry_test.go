package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

func testRegistry(t *testing.T, handler http.HandlerFunc) *Registry {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient("courses", server.URL, 2*time.Second, nil)
	return NewRegistryWithRoutes(
		map[string]*Client{models.SourceCourses: client},
		map[string]string{models.SourceCourses: "/courses"},
	)
}

func TestRegistryFetch(t *testing.T) {
	registry := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courses", r.URL.Path)
		w.Write([]byte(`{"success": true, "data": [{"id": "c1"}]}`))
	})

	records, err := registry.Fetch(context.Background(), models.SourceCourses, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "c1", records[0].ID())
}

func TestRegistryUnknownSource(t *testing.T) {
	registry := NewRegistryWithRoutes(nil, nil)

	_, err := registry.Fetch(context.Background(), "grades", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAggregationInput.Code, appErrors.FromError(err).Code)
}

func TestRegistryTasksValidatesUpFront(t *testing.T) {
	registry := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for a malformed batch")
	})

	_, err := registry.Tasks([]string{models.SourceCourses, "bogus"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAggregationInput.Code, appErrors.FromError(err).Code)

	tasks, err := registry.Tasks([]string{models.SourceCourses}, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.SourceCourses, tasks[0].Source)
}

func TestRegistryWritesEscapeIDs(t *testing.T) {
	var gotPath string
	registry := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"success": true, "data": {"id": "a/b"}}`))
	})

	_, err := registry.UpdateRecord(context.Background(), models.SourceCourses, "a/b", map[string]string{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "/courses/a%2Fb", gotPath)
}

func TestRegistryInstrumentReachesClients(t *testing.T) {
	registry := testRegistry(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": []}`))
	})
	observer := &recordingObserver{}
	registry.Instrument(observer)

	_, err := registry.Fetch(context.Background(), models.SourceCourses, nil)
	require.NoError(t, err)
	require.Len(t, observer.sources, 1)
	assert.Equal(t, "courses", observer.sources[0])
}
