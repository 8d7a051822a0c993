package prodcons

import (
	"context"
	"log/slog"
)

// disabledHandler is the default slog handler: every record is dropped.
type disabledHandler struct{}

func (disabledHandler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (disabledHandler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h disabledHandler) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h disabledHandler) WithGroup(_ string) slog.Handler             { return h }

func discardLogger() *slog.Logger { return slog.New(disabledHandler{}) }
