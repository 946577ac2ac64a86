package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

func recordsTask(source string, records []models.Record) Task {
	return Task{Source: source, Run: func(context.Context) ([]models.Record, error) {
		return records, nil
	}}
}

func failingTask(source string, err error) Task {
	return Task{Source: source, Run: func(context.Context) ([]models.Record, error) {
		return nil, err
	}}
}

func TestGatherSettlesEveryTask(t *testing.T) {
	c := NewCoordinator(4)
	outcomes, err := c.Gather(context.Background(), []Task{
		recordsTask("students", []models.Record{{"id": "s1"}, {"id": "s2"}}),
		recordsTask("courses", []models.Record{{"id": "c1"}}),
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Len(t, outcomes.Records("students"), 2)
	assert.Len(t, outcomes.Records("courses"), 1)
	assert.Empty(t, outcomes.Failed())
}

func TestGatherIsolatesFailures(t *testing.T) {
	c := NewCoordinator(4)
	boom := errors.New("connection refused")
	outcomes, err := c.Gather(context.Background(), []Task{
		recordsTask("students", []models.Record{{"id": "s1"}}),
		failingTask("instructors", boom),
		recordsTask("courses", []models.Record{{"id": "c1"}}),
	})
	require.NoError(t, err, "one failed source must not abort the batch")

	out, ok := outcomes.Get("instructors")
	require.True(t, ok)
	assert.False(t, out.OK())
	appErr := appErrors.FromError(out.Err)
	assert.Equal(t, appErrors.ErrSourceUnavailable.Code, appErr.Code)
	assert.Equal(t, "instructors", appErr.Source)

	// Successful siblings are untouched.
	assert.Len(t, outcomes.Records("students"), 1)
	assert.Len(t, outcomes.Records("courses"), 1)
	assert.Equal(t, []string{"instructors"}, outcomes.Failed())
}

func TestGatherAllFailuresStillSettles(t *testing.T) {
	c := NewCoordinator(2)
	outcomes, err := c.Gather(context.Background(), []Task{
		failingTask("students", errors.New("down")),
		failingTask("courses", errors.New("down")),
	})
	require.NoError(t, err)
	assert.Len(t, outcomes.Failed(), 2)
	assert.Empty(t, outcomes.Collections())
}

func TestGatherRejectsMalformedBatches(t *testing.T) {
	c := NewCoordinator(2)

	cases := []struct {
		name  string
		tasks []Task
	}{
		{"empty list", nil},
		{"empty source name", []Task{recordsTask("", nil)}},
		{"missing run", []Task{{Source: "students"}}},
		{"duplicate source", []Task{
			recordsTask("students", nil),
			recordsTask("students", nil),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.Gather(context.Background(), tc.tasks)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrAggregationInput.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestGatherHonoursCancellation(t *testing.T) {
	c := NewCoordinator(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Gather(ctx, []Task{
		recordsTask("students", nil),
	})
	require.Error(t, err)
}

func TestGatherBoundsConcurrency(t *testing.T) {
	c := NewCoordinator(2)
	var inFlight, peak int64

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = Task{Source: fmt.Sprintf("source-%d", i), Run: func(context.Context) ([]models.Record, error) {
			n := atomic.AddInt64(&inFlight, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			atomic.AddInt64(&inFlight, -1)
			return nil, nil
		}}
	}

	_, err := c.Gather(context.Background(), tasks)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(2))
}

func TestGatherChildrenIsolatesPerParent(t *testing.T) {
	c := NewCoordinator(4)
	batches, err := c.GatherChildren(context.Background(), []string{"m1", "m2", "m3"}, func(_ context.Context, parentID string) ([]models.Record, error) {
		if parentID == "m2" {
			return nil, errors.New("lessons endpoint down")
		}
		return []models.Record{{"id": parentID + "-l1", "module": parentID}}, nil
	})
	require.NoError(t, err)
	require.Len(t, batches, 3)

	// Order follows the parent list.
	assert.Equal(t, "m1", batches[0].ParentID)
	assert.NoError(t, batches[0].Err)
	assert.Len(t, batches[0].Records, 1)

	assert.Error(t, batches[1].Err)
	assert.Nil(t, batches[1].Records)

	assert.NoError(t, batches[2].Err)
	assert.Len(t, batches[2].Records, 1)
}

func TestGatherChildrenRequiresRun(t *testing.T) {
	c := NewCoordinator(1)
	_, err := c.GatherChildren(context.Background(), []string{"m1"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAggregationInput.Code, appErrors.FromError(err).Code)
}
