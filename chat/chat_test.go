package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/klipach/groupchat/live"
)

// fakeSource scripts snapshot delivery for controller tests. Push feeds one
// result set; Fail ends the stream with err.
type fakeSource[T any] struct {
	mu      sync.Mutex
	queue   []func() ([]T, error)
	arrived chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func newFakeSource[T any]() *fakeSource[T] {
	return &fakeSource[T]{
		arrived: make(chan struct{}, 16),
		stopped: make(chan struct{}),
	}
}

func (f *fakeSource[T]) Push(records []T) {
	f.mu.Lock()
	f.queue = append(f.queue, func() ([]T, error) { return records, nil })
	f.mu.Unlock()
	f.arrived <- struct{}{}
}

func (f *fakeSource[T]) Fail(err error) {
	f.mu.Lock()
	f.queue = append(f.queue, func() ([]T, error) { return nil, err })
	f.mu.Unlock()
	f.arrived <- struct{}{}
}

func (f *fakeSource[T]) Next(ctx context.Context) ([]T, error) {
	for {
		f.mu.Lock()
		if len(f.queue) > 0 {
			next := f.queue[0]
			f.queue = f.queue[1:]
			f.mu.Unlock()
			return next()
		}
		f.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.stopped:
			return nil, live.ErrStopped
		case <-f.arrived:
		}
	}
}

func (f *fakeSource[T]) Stop() {
	f.once.Do(func() { close(f.stopped) })
}

func (f *fakeSource[T]) isStopped() bool {
	select {
	case <-f.stopped:
		return true
	default:
		return false
	}
}

// waitFor polls cond until it holds or the deadline passes. Snapshots are
// delivered on the subscription goroutine, so tests have to wait for them.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
