package prodcons

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/ygrebnov/errorc"

	"github.com/ygrebnov/prodcons/metrics"
)

// config holds Pipeline configuration.
type config struct {
	// BufferSize is the capacity of the circular buffer.
	// Default: 5
	BufferSize int

	// Producers is the number of producer goroutines.
	// Default: 3
	Producers int

	// Items is the number of distinct work items. Items itself is the sentinel value.
	// Default: 200
	Items int

	// MaxDelay bounds the simulated work done per item by producers and the consumer.
	// Zero disables simulated work. Ignored when Delayer is set.
	// Default: 100µs
	MaxDelay time.Duration

	// Delayer overrides the random delay built from MaxDelay.
	Delayer Delayer

	// Seed makes the dispatch sequence reproducible when HasSeed is true.
	Seed    uint64
	HasSeed bool

	// Sink receives every consumed non-sentinel item.
	// Default: decimal lines on os.Stdout.
	Sink Sink

	// Logger receives run lifecycle records.
	// Default: discards everything.
	Logger *slog.Logger

	// Metrics records protocol instrumentation.
	// Default: no-op provider.
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		BufferSize: 5,
		Producers:  3,
		Items:      200,
		MaxDelay:   100 * time.Microsecond,
		Sink:       NewWriterSink(os.Stdout),
		Logger:     discardLogger(),
		Metrics:    metrics.NewNoopProvider(),
	}
}

// validateConfig checks the invariants options cannot check on their own.
func validateConfig(cfg *config) error {
	switch {
	case cfg.BufferSize <= 0:
		return invalid("buffer size", cfg.BufferSize)
	case cfg.Producers <= 0:
		return invalid("producers", cfg.Producers)
	case cfg.Items <= 0:
		return invalid("items", cfg.Items)
	case cfg.MaxDelay < 0:
		return errorc.With(ErrInvalidConfig, errorc.String("max delay", cfg.MaxDelay.String()))
	}
	return nil
}

func invalid(name string, v int) error {
	return errorc.With(ErrInvalidConfig, errorc.String(name, strconv.Itoa(v)))
}

// Option configures a Pipeline. Use New(opts...) or Run(ctx, opts...).
type Option func(*config) error

// WithBufferSize sets the capacity of the circular buffer (must be > 0).
func WithBufferSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return invalid("buffer size", n)
		}
		cfg.BufferSize = n
		return nil
	}
}

// WithProducers sets the number of producer goroutines (must be > 0).
func WithProducers(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return invalid("producers", n)
		}
		cfg.Producers = n
		return nil
	}
}

// WithItems sets the number of distinct work items (must be > 0).
// The dispatch bias is only meaningful when items exceed producers.
func WithItems(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return invalid("items", n)
		}
		cfg.Items = n
		return nil
	}
}

// WithMaxDelay bounds the random simulated work per item. Zero disables it.
func WithMaxDelay(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errorc.With(ErrInvalidConfig, errorc.String("max delay", d.String()))
		}
		cfg.MaxDelay = d
		return nil
	}
}

// WithDelayer replaces the random delay with a custom simulator.
func WithDelayer(d Delayer) Option {
	return func(cfg *config) error {
		if d == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("delayer", "nil"))
		}
		cfg.Delayer = d
		return nil
	}
}

// WithSeed seeds the dispatcher's random source.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error { cfg.Seed, cfg.HasSeed = seed, true; return nil }
}

// WithSink sets the output collaborator for consumed items.
func WithSink(s Sink) Option {
	return func(cfg *config) error {
		if s == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("sink", "nil"))
		}
		cfg.Sink = s
		return nil
	}
}

// WithLogger sets the logger used for lifecycle records.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("logger", "nil"))
		}
		cfg.Logger = l
		return nil
	}
}

// WithMetrics sets the metrics provider.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("metrics", "nil"))
		}
		cfg.Metrics = p
		return nil
	}
}
