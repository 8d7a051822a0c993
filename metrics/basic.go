package metrics

import (
	"sync"
	"sync/atomic"
)

// BasicProvider keeps instruments in memory. Instruments are created on
// first use and can be read back by name, which makes it convenient in tests.
type BasicProvider struct {
	counters   instruments[*BasicCounter]
	updowns    instruments[*BasicUpDownCounter]
	histograms instruments[*BasicHistogram]
}

// NewBasicProvider constructs a new BasicProvider.
func NewBasicProvider() *BasicProvider { return &BasicProvider{} }

// instruments is a lazily populated name -> instrument map.
type instruments[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func (s *instruments[T]) get(name string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[name]
	return v, ok
}

func (s *instruments[T]) getOrCreate(name string, newFn func() T) T {
	if v, ok := s.get(name); ok {
		return v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.m[name]; ok {
		return v
	}
	if s.m == nil {
		s.m = make(map[string]T)
	}
	v := newFn()
	s.m[name] = v
	return v
}

func (p *BasicProvider) Counter(name string, _ ...InstrumentOption) Counter {
	return p.counters.getOrCreate(name, func() *BasicCounter { return &BasicCounter{} })
}

func (p *BasicProvider) UpDownCounter(name string, _ ...InstrumentOption) UpDownCounter {
	return p.updowns.getOrCreate(name, func() *BasicUpDownCounter { return &BasicUpDownCounter{} })
}

func (p *BasicProvider) Histogram(name string, _ ...InstrumentOption) Histogram {
	return p.histograms.getOrCreate(name, func() *BasicHistogram { return &BasicHistogram{} })
}

// CounterValue returns the value of the named counter, zero if it was never created.
func (p *BasicProvider) CounterValue(name string) int64 {
	if c, ok := p.counters.get(name); ok {
		return c.Snapshot()
	}
	return 0
}

// UpDownValue returns the value of the named up/down counter, zero if it was never created.
func (p *BasicProvider) UpDownValue(name string) int64 {
	if u, ok := p.updowns.get(name); ok {
		return u.Snapshot()
	}
	return 0
}

// HistogramSnapshot returns the state of the named histogram.
func (p *BasicProvider) HistogramSnapshot(name string) HistSnapshot {
	if h, ok := p.histograms.get(name); ok {
		return h.Snapshot()
	}
	return HistSnapshot{}
}

// BasicCounter is a thread-safe monotonic counter.
type BasicCounter struct {
	val atomic.Int64
}

func (c *BasicCounter) Add(n int64) { c.val.Add(n) }

// Snapshot returns the current value.
func (c *BasicCounter) Snapshot() int64 { return c.val.Load() }

// BasicUpDownCounter is a thread-safe up/down counter that also remembers
// the highest value it reached.
type BasicUpDownCounter struct {
	mu   sync.Mutex
	val  int64
	peak int64
}

func (u *BasicUpDownCounter) Add(n int64) {
	u.mu.Lock()
	u.val += n
	if u.val > u.peak {
		u.peak = u.val
	}
	u.mu.Unlock()
}

// Snapshot returns the current value.
func (u *BasicUpDownCounter) Snapshot() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.val
}

// Peak returns the highest value observed.
func (u *BasicUpDownCounter) Peak() int64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.peak
}

// BasicHistogram tracks count, sum, min and max. It keeps no buckets.
type BasicHistogram struct {
	mu   sync.Mutex
	snap HistSnapshot
}

func (h *BasicHistogram) Record(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.snap.Count == 0 || v < h.snap.Min {
		h.snap.Min = v
	}
	if h.snap.Count == 0 || v > h.snap.Max {
		h.snap.Max = v
	}
	h.snap.Count++
	h.snap.Sum += v
}

// HistSnapshot is an immutable snapshot of a BasicHistogram.
type HistSnapshot struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64
}

// Mean returns Sum/Count, zero when empty.
func (s HistSnapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// Snapshot returns a copy of the histogram state.
func (h *BasicHistogram) Snapshot() HistSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}
