package prodcons

import (
	"context"
	"log/slog"

	"github.com/ygrebnov/prodcons/metrics"
)

type producer struct {
	id         int
	dispatcher *Dispatcher
	channel    *Channel
	delayer    Delayer
	logger     *slog.Logger
	dispatched metrics.Counter
}

// run requests items and puts them until it has put the sentinel.
// It returns the number of real items put.
func (p *producer) run(ctx context.Context) int {
	sentinel := p.dispatcher.Sentinel()
	produced := 0
	for {
		item := p.dispatcher.Next()
		if item != sentinel {
			p.dispatched.Add(1)
		}

		p.delayer.Delay(ctx)

		p.channel.Put(item)
		if item == sentinel {
			p.logger.DebugContext(ctx, "producer finished", slog.Int("producer", p.id), slog.Int("produced", produced))
			return produced
		}
		produced++
	}
}
