// Package logger configures zerolog and carries the request id through
// request contexts.
package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type RequestKey string

const (
	RequestIDKey RequestKey = "requestID"
)

// Setup installs the global zerolog logger. format "json" writes one JSON
// object per line; anything else uses the human-readable console writer.
func Setup(level, format string) error {
	return SetupWriter(os.Stderr, level, format)
}

func SetupWriter(w io.Writer, level, format string) error {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return err
		}
		lvl = parsed
	}
	zerolog.SetGlobalLevel(lvl)

	out := w
	if !strings.EqualFold(format, "json") {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID stores requestID in ctx and attaches a logger tagged with it,
// retrievable with zerolog.Ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	l := log.With().Str("request_id", requestID).Logger()
	return l.WithContext(ctx)
}
