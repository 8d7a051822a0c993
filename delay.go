package prodcons

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delayer simulates a variable amount of work. Implementations must be safe
// for concurrent use and hold no protocol state.
type Delayer interface {
	Delay(ctx context.Context)
}

// DelayFunc adapts an ordinary function to Delayer.
type DelayFunc func(ctx context.Context)

func (f DelayFunc) Delay(ctx context.Context) { f(ctx) }

// NoDelay returns immediately.
type NoDelay struct{}

func (NoDelay) Delay(context.Context) {}

// RandomDelay sleeps for a uniformly random duration in [0, Max).
// It returns early once ctx is done.
type RandomDelay struct {
	Max time.Duration
}

func (r RandomDelay) Delay(ctx context.Context) {
	if r.Max <= 0 || ctx.Err() != nil {
		return
	}
	d := rand.N(r.Max)
	if d == 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func newDelayer(cfg *config) Delayer {
	if cfg.Delayer != nil {
		return cfg.Delayer
	}
	if cfg.MaxDelay <= 0 {
		return NoDelay{}
	}
	return RandomDelay{Max: cfg.MaxDelay}
}
