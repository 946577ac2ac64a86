package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

func TestOutcomeRecorderCountsPerSource(t *testing.T) {
	metrics := NewMetricsService()
	recorder := NewOutcomeRecorder(nil, metrics)

	outcomes := fetch.Outcomes{
		models.SourceStudents: {Source: models.SourceStudents, Records: nRecords(2)},
		models.SourceCourses:  {Source: models.SourceCourses, Err: appErrors.ErrSourceUnavailable},
	}
	recorder.RecordOutcomes(context.Background(), outcomes)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.fetchTotal.WithLabelValues(models.SourceStudents, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.fetchTotal.WithLabelValues(models.SourceCourses, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.degradedTotal))
}

func TestOutcomeRecorderForwardsToHealthLedger(t *testing.T) {
	health := &fakeHealthRecorder{}
	recorder := &OutcomeRecorder{health: health, metrics: NewMetricsService()}

	outcomes := fetch.Outcomes{
		models.SourceStudents: {Source: models.SourceStudents, Records: nRecords(1)},
	}
	recorder.RecordOutcomes(context.Background(), outcomes)

	require.Equal(t, 1, health.calls)
	assert.Equal(t, outcomes, health.last)
}

func TestMetricsServiceObserveFetch(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveFetch(models.SourceStudents, 25*time.Millisecond)

	count := testutil.CollectAndCount(metrics.fetchDuration)
	assert.Equal(t, 1, count)
}
