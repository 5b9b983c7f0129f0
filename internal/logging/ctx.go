package logging

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

type logKeyType int

const (
	ServerPrefix = "server"
	StorePrefix  = "store"
	DaemonPrefix = "daemon"
)

const prefixKey logKeyType = iota

var base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	Level(levelFromEnv()).
	With().Timestamp().Logger()

func levelFromEnv() zerolog.Level {
	if lvl, err := zerolog.ParseLevel(os.Getenv("BLOCKGATE_LOG")); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

// WithPrefix returns a child context carrying a log prefix.
func WithPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, prefixKey, prefix)
}

// From returns a logger tagged with the context-derived prefix, if any.
func From(ctx context.Context) *zerolog.Logger {
	if v := ctx.Value(prefixKey); v != nil {
		if s, ok := v.(string); ok && s != "" {
			l := base.With().Str("prefix", s).Logger()
			return &l
		}
	}
	return &base
}
