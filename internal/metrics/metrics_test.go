package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsInitialization(t *testing.T) {
	assert.NotNil(t, DistanceBatchSeconds)
	assert.NotNil(t, AlignerCallsTotal)
	assert.NotNil(t, AlignerPairsTotal)
	assert.NotNil(t, UnitsScoredTotal)
	assert.NotNil(t, UnitScoreSeconds)
	assert.NotNil(t, PoolRunsTotal)
	assert.NotNil(t, PoolWorkers)
	assert.NotNil(t, PoolRunSeconds)
}

func TestCounterVecsByLabel(t *testing.T) {
	before := testutil.ToFloat64(AlignerCallsTotal.WithLabelValues("symmetric"))
	AlignerCallsTotal.WithLabelValues("symmetric").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(AlignerCallsTotal.WithLabelValues("symmetric")))

	before = testutil.ToFloat64(PoolRunsTotal.WithLabelValues("error"))
	PoolRunsTotal.WithLabelValues("error").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PoolRunsTotal.WithLabelValues("error")))
}

func TestPoolWorkersGauge(t *testing.T) {
	PoolWorkers.Set(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(PoolWorkers))
}

func TestMetricNamesArePrefixed(t *testing.T) {
	PoolRunSeconds.Observe(0.01)
	const want = `
# HELP abx_pool_workers Number of workers used by the most recent pool run
# TYPE abx_pool_workers gauge
abx_pool_workers 3
`
	PoolWorkers.Set(3)
	require.NoError(t, testutil.CollectAndCompare(PoolWorkers, strings.NewReader(want), "abx_pool_workers"))
	assert.Equal(t, 1, testutil.CollectAndCount(PoolRunSeconds))
}
