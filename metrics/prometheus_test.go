package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProvider_RecordsIntoRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheusProvider(reg, "prodcons")

	p.Counter("items_admitted", WithDescription("items written into the buffer")).Add(3)
	p.Counter("items_admitted").Add(2)
	occ := p.UpDownCounter("buffer_occupancy")
	occ.Add(4)
	occ.Add(-1)
	p.Histogram("put_wait_seconds").Record(0.002)

	assert.InDelta(t, 5, testutil.ToFloat64(p.counters["items_admitted"]), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(p.gauges["buffer_occupancy"]), 1e-9)

	n, err := testutil.GatherAndCount(reg,
		"prodcons_items_admitted_total", "prodcons_buffer_occupancy", "prodcons_put_wait_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPrometheusProvider_SharedRegistryReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := NewPrometheusProvider(reg, "prodcons")
	b := NewPrometheusProvider(reg, "prodcons")

	a.Counter("put_waits").Add(1)
	b.Counter("put_waits").Add(1)

	assert.InDelta(t, 2, testutil.ToFloat64(b.counters["put_waits"]), 1e-9)
}

func TestPrometheusProvider_SatisfiesProvider(t *testing.T) {
	var _ Provider = NewPrometheusProvider(prometheus.NewRegistry(), "x")
	var _ Provider = NewBasicProvider()
	var _ Provider = NewNoopProvider()
}
