package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// settings is the resolved CLI configuration.
type settings struct {
	BufferSize int
	Producers  int
	Items      int
	MaxDelay   time.Duration
	Seed       uint64
	HasSeed    bool
	LogLevel   string
	LogFormat  string
	Metrics    bool
}

func defaultSettings() settings {
	return settings{
		BufferSize: 5,
		Producers:  3,
		Items:      200,
		MaxDelay:   100 * time.Microsecond,
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// loadDotEnv loads variables from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// fromEnv overlays PRODCONS_* environment variables onto s.
func fromEnv(s *settings, getenv func(string) string) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"PRODCONS_BUFFER_SIZE", &s.BufferSize},
		{"PRODCONS_PRODUCERS", &s.Producers},
		{"PRODCONS_ITEMS", &s.Items},
	}
	for _, e := range ints {
		if v := getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	if v := getenv("PRODCONS_MAX_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PRODCONS_MAX_DELAY: %w", err)
		}
		s.MaxDelay = d
	}
	if v := getenv("PRODCONS_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PRODCONS_SEED: %w", err)
		}
		s.Seed, s.HasSeed = n, true
	}
	if v := getenv("PRODCONS_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	if v := getenv("PRODCONS_LOG_FORMAT"); v != "" {
		s.LogFormat = v
	}
	if v := getenv("PRODCONS_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PRODCONS_METRICS: %w", err)
		}
		s.Metrics = b
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q; use debug|info|warn|error", s)
	}
	return l, nil
}

func newLogger(s settings, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch s.LogFormat {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q; use text|json", s.LogFormat)
	}
}
