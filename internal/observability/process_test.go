package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessStatsRefresh(t *testing.T) {
	reg := prometheus.NewRegistry()
	ps := NewProcessStats(reg)

	s := ps.Refresh()
	assert.Positive(t, s.HeapBytes)
	assert.Positive(t, s.Goroutines)
	assert.GreaterOrEqual(t, s.CPUPercent, 0.0)
	assert.Equal(t, float64(s.Goroutines), testutil.ToFloat64(ps.goroutines))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
