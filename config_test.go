package prodcons

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/prodcons/metrics"
)

func TestValidateConfig_Defaults(t *testing.T) {
	cfg := defaultConfig()
	if err := validateConfig(&cfg); err != nil {
		t.Fatalf("validateConfig returned error for defaults: %v", err)
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := defaultConfig()
	if cfg.BufferSize != 5 {
		t.Fatalf("BufferSize default = %d; want 5", cfg.BufferSize)
	}
	if cfg.Producers != 3 {
		t.Fatalf("Producers default = %d; want 3", cfg.Producers)
	}
	if cfg.Items != 200 {
		t.Fatalf("Items default = %d; want 200", cfg.Items)
	}
	if cfg.MaxDelay != 100*time.Microsecond {
		t.Fatalf("MaxDelay default = %v; want 100µs", cfg.MaxDelay)
	}
	if cfg.HasSeed {
		t.Fatalf("HasSeed default = true; want false")
	}
	if cfg.Sink == nil || cfg.Logger == nil || cfg.Metrics == nil {
		t.Fatalf("collaborators must have non-nil defaults")
	}
}

func TestNew_InvalidOptions_ReturnsError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{"zero buffer", WithBufferSize(0)},
		{"negative producers", WithProducers(-1)},
		{"zero items", WithItems(0)},
		{"negative delay", WithMaxDelay(-time.Millisecond)},
		{"nil delayer", WithDelayer(nil)},
		{"nil sink", WithSink(nil)},
		{"nil logger", WithLogger(nil)},
		{"nil metrics", WithMetrics(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.opt)
			require.Error(t, err)
			require.Nil(t, p)
		})
	}
}

func TestNew_ValidOptions_Succeeds(t *testing.T) {
	t.Parallel()

	p, err := New(
		WithBufferSize(1),
		WithProducers(2),
		WithItems(4),
		WithMaxDelay(0),
		WithSeed(9),
		WithSink(&SliceSink{}),
		WithMetrics(metrics.NewBasicProvider()),
		nil,
	)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, 1, p.Channel().Cap())
	require.Equal(t, Item(4), p.Dispatcher().Sentinel())
}

func TestNewDelayer(t *testing.T) {
	cfg := defaultConfig()
	require.Equal(t, RandomDelay{Max: 100 * time.Microsecond}, newDelayer(&cfg))

	cfg.MaxDelay = 0
	require.Equal(t, NoDelay{}, newDelayer(&cfg))

	custom := DelayFunc(func(context.Context) {})
	cfg.Delayer = custom
	require.NotNil(t, newDelayer(&cfg))
}
