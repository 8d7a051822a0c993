// Package prodcons runs a fixed set of work items through a bounded circular
// buffer from several producers to a single consumer, admitting items into the
// buffer in strictly increasing order.
//
// Components
//   - Dispatcher: hands out work item identifiers to producers. The assignment
//     rule guarantees that the item the buffer expects next is always held by
//     some producer, so the ordering gate can never deadlock.
//   - Channel: fixed-capacity circular buffer with blocking Put/Get. Put admits
//     an item only when a slot is free and the item is the next one expected.
//   - producers and a single consumer: goroutines started by Pipeline.Run.
//
// Termination
// Each producer puts exactly one sentinel (the value Items) once the dispatcher
// is exhausted. The consumer stops after it has taken one sentinel per
// producer. There is no cancellation: a run always drains completely.
//
// Defaults
// Unless overridden, the following defaults apply:
//   - BufferSize: 5
//   - Producers: 3
//   - Items: 200
//   - MaxDelay: 100µs (simulated work per item, both sides)
//   - Sink: decimal lines on os.Stdout
//   - Logger: discards everything
//   - Metrics: no-op provider
package prodcons
