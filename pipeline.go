package prodcons

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pipeline wires a Dispatcher, a Channel, the producers and the consumer
// for a single run.
type Pipeline struct {
	config *config

	dispatcher *Dispatcher
	channel    *Channel

	started atomic.Bool
}

// Report summarizes a completed run.
type Report struct {
	// RunID correlates log records of one run.
	RunID string
	// Consumed is the number of real items taken by the consumer.
	Consumed int
	// Produced is the number of real items put, per producer.
	Produced []int
	// Sentinels is the number of sentinels taken by the consumer.
	Sentinels int
	Duration  time.Duration
}

// New creates a Pipeline using functional options.
func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	var rnd *rand.Rand
	if cfg.HasSeed {
		rnd = rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	}

	return &Pipeline{
		config:     &cfg,
		dispatcher: NewDispatcher(cfg.Producers, cfg.Items, rnd),
		channel:    NewChannel(cfg.BufferSize, Item(cfg.Items), WithChannelMetrics(cfg.Metrics)),
	}, nil
}

// Dispatcher returns the pipeline's dispatcher.
func (p *Pipeline) Dispatcher() *Dispatcher { return p.dispatcher }

// Channel returns the pipeline's bounded channel.
func (p *Pipeline) Channel() *Channel { return p.channel }

// Run starts the producers and the consumer and returns once all of them
// have terminated. It returns ErrAlreadyRun on a second call.
//
// ctx does not stop the run: termination is driven by sentinels only. A done
// ctx turns simulated delays into no-ops so the remaining items drain quickly.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	if !p.started.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRun
	}

	cfg := p.config
	runID := uuid.NewString()
	logger := cfg.Logger.With(slog.String("run_id", runID))
	delayer := newDelayer(cfg)
	start := time.Now()

	logger.InfoContext(ctx, "run started",
		slog.Int("producers", cfg.Producers),
		slog.Int("items", cfg.Items),
		slog.Int("buffer_size", cfg.BufferSize),
	)
	if cfg.Items <= cfg.Producers {
		logger.WarnContext(ctx, "items do not exceed producers; dispatch bias has no effect")
	}

	dispatched := cfg.Metrics.Counter("items_dispatched")
	report := Report{RunID: runID, Produced: make([]int, cfg.Producers)}

	var g errgroup.Group
	for i := range cfg.Producers {
		pr := &producer{
			id:         i,
			dispatcher: p.dispatcher,
			channel:    p.channel,
			delayer:    delayer,
			logger:     logger,
			dispatched: dispatched,
		}
		g.Go(func() error {
			report.Produced[i] = pr.run(ctx)
			return nil
		})
	}

	c := &consumer{
		channel:   p.channel,
		producers: cfg.Producers,
		sentinel:  Item(cfg.Items),
		sink:      cfg.Sink,
		delayer:   delayer,
		logger:    logger,
		consumed:  cfg.Metrics.Counter("items_consumed"),
		sentinels: cfg.Metrics.Counter("sentinels_consumed"),
	}
	var res consumerResult
	g.Go(func() error {
		res = c.run(ctx)
		return res.err
	})

	err := g.Wait()

	report.Consumed = res.consumed
	report.Sentinels = res.finished
	report.Duration = time.Since(start)

	logger.InfoContext(ctx, "run finished",
		slog.Int("consumed", report.Consumed),
		slog.Duration("duration", report.Duration),
	)
	return report, err
}
