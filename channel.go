package prodcons

import (
	"sync"
	"time"

	"github.com/ygrebnov/prodcons/metrics"
)

// Channel is a fixed-capacity circular buffer with blocking Put and Get.
//
// Put admits items in strictly increasing order: an item enters the buffer
// only when a slot is free and the item equals the next expected value.
// Sentinels are admitted once every real item has been admitted, any number
// of times. All state is guarded by a single mutex; producers wait on
// notFull and the consumer waits on notEmpty.
type Channel struct {
	// noCopy prevents accidental copying of the channel.
	//go:nocopy
	nc noCopy

	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	slots    []Item
	count    int
	head     int // read cursor
	tail     int // write cursor
	next     Item
	sentinel Item

	m channelMetrics
}

// noCopy is a vet-recognized marker to discourage copying types with this field embedded.
// It works with the "-copylocks" analyzer via the presence of Lock/Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type channelMetrics struct {
	admitted  metrics.Counter
	retrieved metrics.Counter
	putWaits  metrics.Counter
	relays    metrics.Counter
	getWaits  metrics.Counter
	occupancy metrics.UpDownCounter
	putWait   metrics.Histogram
}

func newChannelMetrics(p metrics.Provider) channelMetrics {
	return channelMetrics{
		admitted:  p.Counter("items_admitted", metrics.WithDescription("items written into the buffer")),
		retrieved: p.Counter("items_retrieved", metrics.WithDescription("items read from the buffer")),
		putWaits:  p.Counter("put_waits", metrics.WithDescription("times a producer blocked in Put")),
		relays:    p.Counter("put_relays", metrics.WithDescription("wake-ups passed on to another producer")),
		getWaits:  p.Counter("get_waits", metrics.WithDescription("times the consumer blocked in Get")),
		occupancy: p.UpDownCounter("buffer_occupancy", metrics.WithUnit("1")),
		putWait:   p.Histogram("put_wait_seconds", metrics.WithUnit("seconds")),
	}
}

// ChannelOption configures a Channel.
type ChannelOption func(*Channel)

// WithChannelMetrics records channel instrumentation into p.
func WithChannelMetrics(p metrics.Provider) ChannelOption {
	return func(c *Channel) { c.m = newChannelMetrics(p) }
}

// NewChannel returns an empty channel holding at most capacity items that
// expects item 0 first and treats sentinel as the termination value.
// It panics if capacity is not positive.
func NewChannel(capacity int, sentinel Item, opts ...ChannelOption) *Channel {
	if capacity <= 0 {
		panic(Namespace + ": channel capacity must be > 0")
	}
	c := &Channel{
		slots:    make([]Item, capacity),
		sentinel: sentinel,
		m:        newChannelMetrics(metrics.NewNoopProvider()),
	}
	c.notFull = sync.NewCond(&c.mu)
	c.notEmpty = sync.NewCond(&c.mu)
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Put blocks until the buffer has a free slot and item is the next expected
// value, then writes it and wakes the consumer.
func (c *Channel) Put(item Item) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var waitStart time.Time
	for c.count == len(c.slots) || item != c.next {
		if waitStart.IsZero() {
			waitStart = time.Now()
			c.m.putWaits.Add(1)
		}
		c.notFull.Wait()
		if item != c.next {
			// Woken for a slot we cannot use: hand the wake-up to another
			// producer, it may hold the expected item.
			c.m.relays.Add(1)
			c.notFull.Signal()
		}
	}
	if !waitStart.IsZero() {
		c.m.putWait.Record(time.Since(waitStart).Seconds())
	}

	c.slots[c.tail] = item
	c.tail = (c.tail + 1) % len(c.slots)
	c.count++
	if c.next < c.sentinel {
		c.next++
	}
	c.m.admitted.Add(1)
	c.m.occupancy.Add(1)

	c.notEmpty.Signal()
}

// Get blocks until the buffer holds an item, removes the oldest one and wakes
// one waiting producer.
func (c *Channel) Get() Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 {
		c.m.getWaits.Add(1)
	}
	for c.count == 0 {
		c.notEmpty.Wait()
	}

	item := c.slots[c.head]
	c.slots[c.head] = 0
	c.head = (c.head + 1) % len(c.slots)
	c.count--
	c.m.retrieved.Add(1)
	c.m.occupancy.Add(-1)

	c.notFull.Signal()
	return item
}

// Len returns the number of items currently buffered.
func (c *Channel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Cap returns the buffer capacity.
func (c *Channel) Cap() int { return len(c.slots) }

// Next returns the next item Put will admit.
func (c *Channel) Next() Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
