package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ygrebnov/prodcons"
	"github.com/ygrebnov/prodcons/metrics"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	s := defaultSettings()

	cmd := &cobra.Command{
		Use:   "prodcons",
		Short: "Run ordered producers through a bounded buffer to one consumer",
		Long: "prodcons starts several producers and one consumer connected by a bounded circular buffer.\n" +
			"Items enter the buffer in increasing order; the consumer prints each item on its own line.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadDotEnv(".env"); err != nil {
				return err
			}
			env := defaultSettings()
			if err := fromEnv(&env, os.Getenv); err != nil {
				return err
			}
			// flags win over the environment; untouched flags take the env value
			applyUnchanged(cmd, &s, env)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), s, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.IntVar(&s.BufferSize, "buffer-size", s.BufferSize, "Capacity of the circular buffer (env PRODCONS_BUFFER_SIZE)")
	f.IntVar(&s.Producers, "producers", s.Producers, "Number of producers (env PRODCONS_PRODUCERS)")
	f.IntVar(&s.Items, "items", s.Items, "Number of distinct work items (env PRODCONS_ITEMS)")
	f.DurationVar(&s.MaxDelay, "max-delay", s.MaxDelay, "Upper bound of simulated work per item, 0 disables (env PRODCONS_MAX_DELAY)")
	f.Uint64Var(&s.Seed, "seed", 0, "Seed for the dispatcher's random source (env PRODCONS_SEED)")
	f.StringVar(&s.LogLevel, "log-level", s.LogLevel, "Log level: debug|info|warn|error (env PRODCONS_LOG_LEVEL)")
	f.StringVar(&s.LogFormat, "log-format", s.LogFormat, "Log format: text|json (env PRODCONS_LOG_FORMAT)")
	f.BoolVar(&s.Metrics, "metrics", false, "Print metrics to stderr after the run (env PRODCONS_METRICS)")

	return cmd
}

// applyUnchanged copies env values into s for every flag the user did not set.
func applyUnchanged(cmd *cobra.Command, s *settings, env settings) {
	f := cmd.Flags()
	if !f.Changed("buffer-size") {
		s.BufferSize = env.BufferSize
	}
	if !f.Changed("producers") {
		s.Producers = env.Producers
	}
	if !f.Changed("items") {
		s.Items = env.Items
	}
	if !f.Changed("max-delay") {
		s.MaxDelay = env.MaxDelay
	}
	if f.Changed("seed") {
		s.HasSeed = true
	} else {
		s.Seed, s.HasSeed = env.Seed, env.HasSeed
	}
	if !f.Changed("log-level") {
		s.LogLevel = env.LogLevel
	}
	if !f.Changed("log-format") {
		s.LogFormat = env.LogFormat
	}
	if !f.Changed("metrics") {
		s.Metrics = env.Metrics
	}
}

func run(ctx context.Context, s settings, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(s, stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	opts := []prodcons.Option{
		prodcons.WithBufferSize(s.BufferSize),
		prodcons.WithProducers(s.Producers),
		prodcons.WithItems(s.Items),
		prodcons.WithMaxDelay(s.MaxDelay),
		prodcons.WithSink(prodcons.NewWriterSink(stdout)),
		prodcons.WithLogger(logger),
		prodcons.WithMetrics(metrics.NewPrometheusProvider(reg, prodcons.Namespace)),
	}
	if s.HasSeed {
		opts = append(opts, prodcons.WithSeed(s.Seed))
	}

	if _, err := prodcons.Run(ctx, opts...); err != nil {
		return err
	}

	if s.Metrics {
		return printMetrics(stderr, reg)
	}
	return nil
}

// printMetrics writes one "name value" line per counter, gauge and histogram.
func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(w, "%s %g\n", mf.GetName(), m.GetGauge().GetValue())
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s_count %d\n", mf.GetName(), h.GetSampleCount())
				fmt.Fprintf(w, "%s_sum %g\n", mf.GetName(), h.GetSampleSum())
			}
		}
	}
	return nil
}
