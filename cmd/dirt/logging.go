package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/hupe1980/dirt"
)

func newLogger(format, level string, w io.Writer) (*dirt.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("%w: -log-level %q", errUsage, level)
	}

	switch strings.ToLower(format) {
	case "text", "":
		return dirt.NewLogger(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.TimeOnly,
		})), nil
	case "json":
		return dirt.NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
	default:
		return nil, fmt.Errorf("%w: -log-format %q (want text or json)", errUsage, format)
	}
}
