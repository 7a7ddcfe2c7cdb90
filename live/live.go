// Package live manages push subscriptions against the document database.
//
// A Source yields the complete current result set for its scope every time it
// changes. Each callback invocation is authoritative and total, never a diff;
// consumers replace their state with the delivered slice verbatim.
package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/rs/xid"

	"github.com/klipach/groupchat/log"
)

const (
	subIDLogField    = "subID"
	errorMsgLogField = "errorMsg"
)

// ErrStopped is returned by a Source once its scope has been torn down.
var ErrStopped = errors.New("subscription stopped")

// Source is a push stream for one query scope. Next blocks until the result
// set changes and returns it in full, server-ordered. A terminal error ends
// the stream; retry policy belongs to the transport underneath, not here.
type Source[T any] interface {
	Next(ctx context.Context) ([]T, error)
	Stop()
}

// Subscription is the teardown handle for one watched scope. Dispose is safe
// to call more than once and from any goroutine; after it returns no further
// callbacks are started.
type Subscription struct {
	id     string
	cancel context.CancelFunc
	stop   func()
	done   chan struct{}
	once   sync.Once
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() string { return s.id }

// Dispose tears the subscription down. It must run on every unmount path; a
// leaked listener keeps consuming bandwidth and keeps writing cache entries
// for a screen that no longer exists.
func (s *Subscription) Dispose() {
	s.once.Do(func() {
		s.cancel()
		s.stop()
	})
	<-s.done
}

// Watch drains src on its own goroutine, invoking onSnapshot with each full
// result set in arrival order. onError is invoked at most once, with the
// terminal error, and ends delivery; the caller is expected to present an
// empty result rather than crash, and must not retry here.
func Watch[T any](ctx context.Context, src Source[T], onSnapshot func([]T), onError func(error)) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		id:     xid.New().String(),
		cancel: cancel,
		stop:   src.Stop,
		done:   make(chan struct{}),
	}
	logger := log.LoggerFromContext(ctx).With(slog.String(subIDLogField, sub.id))
	logger.Info("subscription opened")

	go func() {
		defer close(sub.done)
		for {
			records, err := src.Next(ctx)
			if err != nil {
				switch {
				case errors.Is(err, context.Canceled), errors.Is(err, ErrStopped):
					logger.Info("subscription closed")
				default:
					logger.Error("subscription failed", slog.String(errorMsgLogField, err.Error()))
					onError(err)
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			onSnapshot(records)
		}
	}()
	return sub
}
