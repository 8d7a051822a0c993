package prodcons

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives consumed items. It is only ever called from the consumer
// goroutine.
type Sink interface {
	Emit(item Item) error
}

// SinkFunc adapts an ordinary function to Sink.
type SinkFunc func(item Item) error

func (f SinkFunc) Emit(item Item) error { return f(item) }

// WriterSink writes each item as one decimal line.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a Sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink { return &WriterSink{w: w} }

func (s *WriterSink) Emit(item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%d\n", item)
	return err
}

// SliceSink collects items in memory.
type SliceSink struct {
	mu    sync.Mutex
	items []Item
}

func (s *SliceSink) Emit(item Item) error {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
	return nil
}

// Items returns a copy of the collected items in arrival order.
func (s *SliceSink) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}
