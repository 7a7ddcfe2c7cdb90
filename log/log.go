package log

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type ctxKey struct{}

// Handler is a slog.Handler writing one JSON object per line. The chat UI
// owns stdout, so logs go to a file (or stderr as a fallback) instead.
type Handler struct {
	mu    *sync.Mutex
	out   io.Writer
	attrs []slog.Attr
}

// NewHandler creates a handler writing to out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{mu: &sync.Mutex{}, out: out}
}

// Open returns a logger writing to the file at path, appending. An empty or
// unwritable path degrades to stderr.
func Open(path string) *slog.Logger {
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			return slog.New(NewHandler(f))
		}
	}
	return slog.New(NewHandler(os.Stderr))
}

// Handle processes log records.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	entry := map[string]any{
		"severity": r.Level.String(),
		"time":     time.Now().Format(time.RFC3339),
		"message":  r.Message,
	}
	for _, attr := range h.attrs {
		entry[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry[attr.Key] = attr.Value.Any()
		return true
	})

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.out.Write(jsonData)
	h.out.Write([]byte("\n"))
	return nil
}

// Enabled always returns true, so all log levels are handled.
func (h *Handler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// WithAttrs returns a new handler with additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &Handler{mu: h.mu, out: h.out, attrs: newAttrs}
}

// WithGroup returns the same handler, as grouping is not implemented.
func (h *Handler) WithGroup(_ string) slog.Handler {
	return h
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(NewHandler(os.Stderr))
}
