package prodcons

import (
	"math/rand/v2"
	"sync"
)

// Dispatcher hands out work item identifiers to producers.
//
// Every identifier in [0, items) is issued exactly once; afterwards each call
// returns the sentinel (items). The assignment rule is biased towards low
// identifiers and, from the producers-th call on, forces the identifier
// counter-producers out. Since a producer holds at most one item at a time, the
// item the channel expects next is therefore always held by some producer and
// the ordering gate in Channel.Put cannot deadlock.
//
// Dispatcher is safe for concurrent use. Its lock is never held together with
// the channel lock.
type Dispatcher struct {
	mu        sync.Mutex
	issued    []bool
	counter   int
	producers int
	items     int
	rnd       *rand.Rand
}

// NewDispatcher returns a dispatcher for the given number of producers and items.
// A nil rnd is replaced by a randomly seeded source. It panics if producers or
// items is not positive.
func NewDispatcher(producers, items int, rnd *rand.Rand) *Dispatcher {
	if producers <= 0 || items <= 0 {
		panic(Namespace + ": dispatcher needs positive producers and items")
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Dispatcher{
		issued:    make([]bool, items+1),
		producers: producers,
		items:     items,
		rnd:       rnd,
	}
}

// Sentinel returns the termination value.
func (d *Dispatcher) Sentinel() Item { return Item(d.items) }

// Next returns the next identifier to produce, or the sentinel once all
// identifiers have been issued.
func (d *Dispatcher) Next() Item {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.counter++
	if d.counter > d.items {
		d.issued[d.items] = true
		return Item(d.items)
	}

	var found int
	if d.counter < d.producers {
		// any item will do for the first producers-1 calls; prefer low ones
		found = d.rnd.IntN(2*d.producers) % d.items
	} else {
		found = d.counter - d.producers
		if d.issued[found] {
			found = (d.counter + d.rnd.IntN(d.producers)) % d.items
		}
	}

	if d.issued[found] {
		// oldest unissued; counter <= items guarantees one exists
		found = 0
		for d.issued[found] {
			found++
		}
	}

	d.issued[found] = true
	return Item(found)
}

// Issued returns how many non-sentinel identifiers have been handed out.
func (d *Dispatcher) Issued() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.counter > d.items {
		return d.items
	}
	return d.counter
}
