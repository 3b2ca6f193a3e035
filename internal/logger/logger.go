package logger

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a logger with the specified log level.
// Uses colourized text for the dev environment otherwise output is JSON.
// The commands pass stderr: stdout is reserved for the API responses printed by the harness.
func NewLogger(w io.Writer, logLevel slog.Level, environment string) *slog.Logger {
	if environment == "dev" {
		return slog.New(
			tint.NewHandler(w, &tint.Options{
				Level:      logLevel,
				TimeFormat: time.Kitchen,
			}),
		)
	}

	return slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: logLevel,
		}))
}

// Transport wraps an http.RoundTripper and logs each outgoing request once it completes.
//
// Successful requests are logged at debug level, error statuses at warn level and transport failures at error level.
// The Authorization header is never logged.
func Transport(next http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, logger: logger}
}

type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	res, err := t.next.RoundTrip(req)

	logAttrs := []slog.Attr{
		slog.String("type", "HTTP"),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Bool("authenticated", req.Header.Get("Authorization") != ""),
		slog.Duration("duration", time.Since(start)),
	}

	if err != nil {
		logAttrs = append(logAttrs, slog.String("error", err.Error()))
		t.logger.LogAttrs(req.Context(), slog.LevelError, "request failed", logAttrs...)
		return res, err
	}

	logAttrs = append(logAttrs, slog.Int("status", res.StatusCode))

	switch {
	case res.StatusCode >= 400:
		t.logger.LogAttrs(req.Context(), slog.LevelWarn, "request completed", logAttrs...)
	default:
		t.logger.LogAttrs(req.Context(), slog.LevelDebug, "request completed", logAttrs...)
	}

	return res, nil
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach the wrapped transport
func (t *loggingTransport) CloseIdleConnections() {
	type closeIdler interface {
		CloseIdleConnections()
	}
	if ci, ok := t.next.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}
