package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New("test", reg)

	c.SubmitAccepted()
	c.SubmitAccepted()
	c.SubmitRejected()
	c.RetryScheduled()
	c.RetriesExhausted()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.submitAccepted))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.submitRejected))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.retryScheduled))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.retriesExhausted))
}

func TestCollector_Gauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New("test", reg)

	c.QueuedDelta(3)
	c.QueuedDelta(-1)
	c.RunningDelta(2)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.queued))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.running))
}

func TestCollector_FlushObserved(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New("test", reg)

	c.FlushObserved(250 * time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(c.flushDuration))
}
