// 指示: miu200521358
package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetargetMetricsRecordsValues(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewRetargetMetrics(registry)
	require.NoError(t, err)

	m.RecordCompile("mixamo", "ok", 0.01)
	m.RecordCompile("mixamo", "ok", 0.02)
	m.RecordCompile("unknown", "zero_tracks", 0.001)
	m.ObserveMappedRatio(0.75)
	m.AddSkippedTracks("RetargetWarningScaleChannel", 3)
	m.AddSkippedTracks("RetargetWarningScaleChannel", 0)
	m.RecordModeSwitch("live")
	m.IncrementCrossFades()
	m.IncrementStaleResults()
	m.IncrementStaleResults()

	assert.InDelta(t, 2, testutil.ToFloat64(m.CompileResults.WithLabelValues("ok", "mixamo")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CompileResults.WithLabelValues("zero_tracks", "unknown")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(m.SkippedTracks.WithLabelValues("RetargetWarningScaleChannel")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ModeSwitches.WithLabelValues("live")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CrossFades), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(m.StaleResults), 1e-9)
}

func TestRetargetMetricsRejectsDoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewRetargetMetrics(registry)
	require.NoError(t, err)
	_, err = NewRetargetMetrics(registry)
	assert.Error(t, err)
}
