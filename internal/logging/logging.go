// Package logging builds the logrus logger and carries a request-scoped
// entry through the context.
package logging

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

type ctxKey string

const entryKey ctxKey = "log_entry"

// New returns a logger writing to out. format is "json" or "text"; an
// unparsable level falls back to info.
func New(level, format string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := logrus.New()
	logger.SetOutput(out)
	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// holder lets middleware further down add fields that the request log
// line written on the way out still sees.
type holder struct {
	mu    sync.Mutex
	entry *logrus.Entry
}

// WithEntry stores a request-scoped entry.
func WithEntry(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, entryKey, &holder{entry: entry})
}

// FromContext returns the request entry, or one from the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if h, ok := ctx.Value(entryKey).(*holder); ok && h != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// AddField adds key=value to the request entry. Every context derived from
// the one passed to WithEntry sees the field.
func AddField(ctx context.Context, key string, value any) context.Context {
	h, ok := ctx.Value(entryKey).(*holder)
	if !ok || h == nil {
		return WithEntry(ctx, FromContext(ctx).WithField(key, value))
	}
	h.mu.Lock()
	h.entry = h.entry.WithField(key, value)
	h.mu.Unlock()
	return ctx
}
