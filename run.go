package prodcons

import "context"

// Run builds a Pipeline from opts and runs it to completion.
//
// Semantics:
// - Every item in [0, Items) reaches the sink exactly once, in increasing order.
// - Run returns after the consumer and all producers have terminated.
// - The returned error is a configuration error or the first sink error.
func Run(ctx context.Context, opts ...Option) (Report, error) {
	p, err := New(opts...)
	if err != nil {
		return Report{}, err
	}
	return p.Run(ctx)
}
