package prodcons

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ygrebnov/prodcons/metrics"
)

type consumer struct {
	channel   *Channel
	producers int
	sentinel  Item
	sink      Sink
	delayer   Delayer
	logger    *slog.Logger
	consumed  metrics.Counter
	sentinels metrics.Counter
}

// consumerResult is the consumer's termination state.
type consumerResult struct {
	consumed int
	finished int
	err      error // first sink error
}

// run drains the channel until every producer's sentinel has arrived.
// A sink error does not stop the drain; producers could not terminate otherwise.
func (c *consumer) run(ctx context.Context) consumerResult {
	var res consumerResult
	for {
		item := c.channel.Get()
		if item == c.sentinel {
			res.finished++
			c.sentinels.Add(1)
		} else {
			res.consumed++
			c.consumed.Add(1)
			if err := c.sink.Emit(item); err != nil && res.err == nil {
				res.err = fmt.Errorf("%s: emit item %d: %w", Namespace, item, err)
				c.logger.ErrorContext(ctx, "sink failed", slog.Int("item", int(item)), slog.Any("error", err))
			}
		}

		if res.finished == c.producers {
			c.logger.DebugContext(ctx, "consumer finished", slog.Int("consumed", res.consumed))
			return res
		}

		c.delayer.Delay(ctx)
	}
}
