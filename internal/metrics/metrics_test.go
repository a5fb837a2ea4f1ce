package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	r := NewRegistry()

	r.IncrementCounter("messages_dispatched", map[string]string{"channel": "alerts"})
	r.IncrementCounter("messages_dispatched", map[string]string{"channel": "alerts"})
	r.AddToCounter("messages_dispatched", 3, map[string]string{"channel": "alerts"})

	snap := r.Snapshot()
	counters := snap["counters"].(map[string]*Metric)
	require.Len(t, counters, 1)
	for _, c := range counters {
		assert.Equal(t, float64(5), c.Value)
		assert.Equal(t, "alerts", c.Labels["channel"])
	}
}

func TestCounterLabelKeyOrderIsStable(t *testing.T) {
	r := NewRegistry()

	r.IncrementCounter("sends", map[string]string{"a": "1", "b": "2"})
	r.IncrementCounter("sends", map[string]string{"b": "2", "a": "1"})

	counters := r.Snapshot()["counters"].(map[string]*Metric)
	require.Len(t, counters, 1)
}

func TestTimer(t *testing.T) {
	r := NewRegistry()

	for i := 1; i <= 10; i++ {
		r.RecordTimer("broadcast", time.Duration(i)*time.Millisecond, nil)
	}

	timers := r.Snapshot()["timers"].(map[string]*TimerMetric)
	timer := timers["broadcast"]
	require.NotNil(t, timer)
	assert.Equal(t, int64(10), timer.Count)
	assert.InDelta(t, 1.0, timer.Min, 0.01)
	assert.InDelta(t, 10.0, timer.Max, 0.01)
	assert.InDelta(t, 5.5, timer.Average, 0.01)
	assert.Greater(t, timer.P95, 0.0)
}

func TestGauge(t *testing.T) {
	r := NewRegistry()

	r.SetGauge("pending_resends", 7, nil)
	r.SetGauge("pending_resends", 4, nil)

	gauges := r.Snapshot()["gauges"].(map[string]*Metric)
	assert.Equal(t, float64(4), gauges["pending_resends"].Value)
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.IncrementCounter("x", nil)

	snap := r.Snapshot()
	snap["counters"].(map[string]*Metric)["x"].Value = 100

	fresh := r.Snapshot()["counters"].(map[string]*Metric)
	assert.Equal(t, float64(1), fresh["x"].Value)
}
