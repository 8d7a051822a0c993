package prodcons

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/prodcons/metrics"
)

func sequence(n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item(i)
	}
	return out
}

// runWithin runs p and fails the test if it does not complete within d.
func runWithin(t *testing.T, d time.Duration, p *Pipeline) Report {
	t.Helper()
	type result struct {
		r   Report
		err error
	}
	ch := make(chan result, 1)
	go func() {
		r, err := p.Run(context.Background())
		ch <- result{r, err}
	}()
	select {
	case res := <-ch:
		require.NoError(t, res.err)
		return res.r
	case <-time.After(d):
		t.Fatalf("run did not complete within %s", d)
		return Report{}
	}
}

func TestRun_TwoProducersCapacityOne(t *testing.T) {
	for seed := uint64(0); seed < 30; seed++ {
		sink := &SliceSink{}
		p, err := New(
			WithBufferSize(1),
			WithProducers(2),
			WithItems(4),
			WithSeed(seed),
			WithSink(sink),
		)
		require.NoError(t, err)

		r := runWithin(t, 5*time.Second, p)
		require.Equal(t, sequence(4), sink.Items(), "seed=%d", seed)
		require.Equal(t, 4, r.Consumed)
		require.Equal(t, 2, r.Sentinels)
	}
}

func TestRun_SingleProducerLargeBufferNeverBlocksPut(t *testing.T) {
	const items = 64
	sink := &SliceSink{}
	mp := metrics.NewBasicProvider()
	p, err := New(
		WithBufferSize(items+1),
		WithProducers(1),
		WithItems(items),
		WithMaxDelay(0),
		WithSink(sink),
		WithMetrics(mp),
	)
	require.NoError(t, err)

	r := runWithin(t, 5*time.Second, p)
	require.Equal(t, sequence(items), sink.Items())
	require.Equal(t, []int{items}, r.Produced)
	assert.Equal(t, int64(0), mp.CounterValue("put_waits"))
	assert.Equal(t, int64(items), mp.CounterValue("items_dispatched"))
	assert.Equal(t, int64(items), mp.CounterValue("items_consumed"))
	assert.Equal(t, int64(1), mp.CounterValue("sentinels_consumed"))
	assert.Equal(t, int64(items+1), mp.CounterValue("items_admitted"))
}

func TestRun_Stress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	const producers, items, capacity = 8, 1000, 4
	runs := 25
	for run := range runs {
		sink := &SliceSink{}
		mp := metrics.NewBasicProvider()
		p, err := New(
			WithBufferSize(capacity),
			WithProducers(producers),
			WithItems(items),
			WithMaxDelay(0),
			WithSink(sink),
			WithMetrics(mp),
		)
		require.NoError(t, err)

		r := runWithin(t, 20*time.Second, p)
		require.Equal(t, sequence(items), sink.Items(), "run %d", run)
		require.Equal(t, producers, r.Sentinels)

		total := 0
		for _, n := range r.Produced {
			total += n
		}
		require.Equal(t, items, total)
		require.Equal(t, int64(items+producers), mp.CounterValue("items_admitted"))
		require.Equal(t, int64(0), mp.UpDownValue("buffer_occupancy"))
	}
}

func TestRun_StressWithRandomDelay(t *testing.T) {
	if testing.Short() {
		t.Skip("stress test")
	}
	for run := range 5 {
		sink := &SliceSink{}
		p, err := New(
			WithBufferSize(3),
			WithProducers(6),
			WithItems(300),
			WithMaxDelay(50*time.Microsecond),
			WithSink(sink),
		)
		require.NoError(t, err)
		runWithin(t, 20*time.Second, p)
		require.Equal(t, sequence(300), sink.Items(), "run %d", run)
	}
}

func TestRun_AdmissionSequenceEndsWithOneSentinelPerProducer(t *testing.T) {
	const producers, items = 5, 200
	d := NewDispatcher(producers, items, seeded(3))
	c := NewChannel(2, d.Sentinel())

	for i := range producers {
		pr := &producer{id: i, dispatcher: d, channel: c, delayer: NoDelay{}, logger: discardLogger(), dispatched: metrics.NewNoopProvider().Counter("")}
		go pr.run(context.Background())
	}

	admitted := make([]Item, 0, items+producers)
	for sentinels := 0; sentinels < producers; {
		item := c.Get()
		admitted = append(admitted, item)
		if item == d.Sentinel() {
			sentinels++
		}
	}

	require.Equal(t, sequence(items), admitted[:items])
	for _, item := range admitted[items:] {
		require.Equal(t, d.Sentinel(), item)
	}
}

func TestPipeline_RunTwice(t *testing.T) {
	p, err := New(WithItems(3), WithMaxDelay(0), WithSink(&SliceSink{}))
	require.NoError(t, err)

	runWithin(t, 5*time.Second, p)
	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyRun)
}

func TestRun_SinkErrorDoesNotStallProducers(t *testing.T) {
	errBoom := errors.New("boom")
	var calls atomic.Int32
	sink := SinkFunc(func(item Item) error {
		calls.Add(1)
		if item == 2 {
			return errBoom
		}
		return nil
	})

	r, err := Run(context.Background(),
		WithProducers(3), WithItems(20), WithBufferSize(2), WithMaxDelay(0), WithSink(sink))
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, int32(20), calls.Load())
	require.Equal(t, 20, r.Consumed)
	require.Equal(t, 3, r.Sentinels)
}

func TestRun_CancelledContextStillDrains(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &SliceSink{}
	_, err := Run(ctx, WithProducers(4), WithItems(100), WithMaxDelay(time.Second), WithSink(sink))
	require.NoError(t, err)
	require.Equal(t, sequence(100), sink.Items())
}

func TestRun_WritesDecimalLines(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run(context.Background(),
		WithProducers(2), WithItems(5), WithBufferSize(2), WithMaxDelay(0), WithSink(NewWriterSink(&buf)))
	require.NoError(t, err)
	require.Equal(t, "0\n1\n2\n3\n4\n", buf.String())
}

func TestRun_LogsLifecycle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r, err := Run(context.Background(),
		WithProducers(2), WithItems(2), WithMaxDelay(0), WithSink(&SliceSink{}), WithLogger(logger))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run started")
	assert.Contains(t, out, "run finished")
	assert.Contains(t, out, "producer finished")
	assert.Contains(t, out, "consumer finished")
	assert.Contains(t, out, "run_id="+r.RunID)
	// items == producers triggers the dispatch-bias warning
	assert.True(t, strings.Contains(out, "level=WARN"))
}

func TestRun_CustomDelayerIsUsedOnBothSides(t *testing.T) {
	var calls atomic.Int64
	d := DelayFunc(func(context.Context) { calls.Add(1) })

	_, err := Run(context.Background(),
		WithProducers(2), WithItems(10), WithDelayer(d), WithSink(&SliceSink{}))
	require.NoError(t, err)
	// one per dispatched item or sentinel, plus one per consumed item except the last
	assert.Equal(t, int64((10+2)+(10+2-1)), calls.Load())
}
