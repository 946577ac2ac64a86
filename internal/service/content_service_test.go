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

// outlineSources routes lesson fetches by the module query parameter so each
// child batch can succeed or fail independently.
type outlineSources struct {
	*fakeSources
	lessonsByModule map[string][]models.Record
	failModules     map[string]error
}

func (o *outlineSources) Fetch(ctx context.Context, source string, query url.Values) ([]models.Record, error) {
	if source != models.SourceLessons {
		return o.fakeSources.Fetch(ctx, source, query)
	}
	moduleID := query.Get("module")
	if err, ok := o.failModules[moduleID]; ok {
		return nil, err
	}
	return o.lessonsByModule[moduleID], nil
}

func TestCourseOutlineAssemblesTree(t *testing.T) {
	base := newFakeSources()
	base.records[models.SourceModules] = []models.Record{
		{"id": "m1", "name": "Intro", "order": float64(1)},
		{"id": "m2", "name": "Advanced", "order": float64(2)},
	}
	sources := &outlineSources{
		fakeSources: base,
		lessonsByModule: map[string][]models.Record{
			"m1": {
				{"id": "l2", "module": "m1", "order": float64(2)},
				{"id": "l1", "module": map[string]interface{}{"id": "m1"}, "order": float64(1)},
			},
			"m2": {},
		},
	}

	svc := NewContentService(sources, nil, zap.NewNop())

	outline, err := svc.CourseOutline(context.Background(), testSession(), "c1")
	require.NoError(t, err)
	assert.Equal(t, fetch.StatusComplete, outline.Verdict.Status)
	require.Len(t, outline.Modules, 2)

	first := outline.Modules[0]
	assert.Equal(t, "m1", first.Module.ID())
	require.Len(t, first.Lessons, 2)
	// lessons sort by order regardless of reference encoding
	assert.Equal(t, "l1", first.Lessons[0].ID())
	assert.Equal(t, "l2", first.Lessons[1].ID())

	assert.Empty(t, outline.Modules[1].Lessons)
}

func TestCourseOutlineIsolatesFailedModuleBatch(t *testing.T) {
	base := newFakeSources()
	base.records[models.SourceModules] = []models.Record{
		{"id": "m1"},
		{"id": "m2"},
	}
	sources := &outlineSources{
		fakeSources: base,
		lessonsByModule: map[string][]models.Record{
			"m2": {{"id": "l9", "module": "m2"}},
		},
		failModules: map[string]error{"m1": errors.New("content shard down")},
	}

	svc := NewContentService(sources, nil, zap.NewNop())

	outline, err := svc.CourseOutline(context.Background(), testSession(), "c1")
	require.NoError(t, err)
	assert.Equal(t, fetch.StatusDegraded, outline.Verdict.Status)
	require.Len(t, outline.Modules, 2)
	assert.NotEmpty(t, outline.Modules[0].FetchError)
	assert.Empty(t, outline.Modules[0].Lessons)
	// sibling batch is untouched
	assert.Empty(t, outline.Modules[1].FetchError)
	require.Len(t, outline.Modules[1].Lessons, 1)
}

func TestCourseOutlineParentLevelDown(t *testing.T) {
	base := newFakeSources()
	base.fail[models.SourceModules] = errors.New("content down")
	sources := &outlineSources{fakeSources: base}

	svc := NewContentService(sources, nil, zap.NewNop())

	outline, err := svc.CourseOutline(context.Background(), testSession(), "c1")
	require.NoError(t, err)
	assert.Equal(t, fetch.StatusUnavailable, outline.Verdict.Status)
	assert.Empty(t, outline.Modules)
}
