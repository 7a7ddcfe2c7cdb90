// Package chat holds the screen controllers: each one owns exactly one live
// subscription plus its view state, and must be closed on every unmount path
// before the state is discarded.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/klipach/groupchat/cache"
	"github.com/klipach/groupchat/contract"
	"github.com/klipach/groupchat/live"
	"github.com/klipach/groupchat/store"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrNoImage      = errors.New("image payload is empty")
)

const defaultImageType = "image/jpeg"

// MessageCache is the advisory thread cache. Every error it returns is
// discarded at the call site; the cache never becomes a hard dependency.
type MessageCache interface {
	Messages(ctx context.Context, groupID string) ([]contract.Message, error)
	PutMessages(ctx context.Context, groupID string, msgs []contract.Message) error
}

// MessageSender is the outgoing write path. Backed by store.Store.
type MessageSender interface {
	SendText(ctx context.Context, groupID string, from store.Sender, body string) error
	SendImage(ctx context.Context, groupID string, from store.Sender, base64Data, mimeType string) error
}

// Thread is the message-thread screen: cached cold-start render, live
// snapshot synchronization with cache write-back, and the send path.
type Thread struct {
	groupID string
	me      store.Sender
	sender  MessageSender
	cache   MessageCache
	ctx     context.Context
	sub     *live.Subscription

	mu      sync.Mutex
	msgs    []contract.Message
	errMsg  string
	sending bool
}

// OpenThread mounts the thread for groupID. The cached window, if any, is
// rendered immediately as a provisional state; the first live snapshot
// replaces it in full. There is never a merge between cache and live data:
// the live snapshot always wins.
func OpenThread(ctx context.Context, groupID string, me store.Sender, sender MessageSender, msgCache MessageCache, src live.Source[contract.Message]) *Thread {
	t := &Thread{
		groupID: groupID,
		me:      me,
		sender:  sender,
		cache:   msgCache,
		ctx:     ctx,
	}
	if cached, err := msgCache.Messages(ctx, groupID); err == nil {
		t.msgs = cached
	}
	t.sub = live.Watch(ctx, src, t.onSnapshot, t.onError)
	return t
}

// onSnapshot replaces the in-memory list with the server-ordered result set
// verbatim, then writes the trimmed window back to the cache. The write-back
// is best effort: the cache is advisory and its failures stay here.
func (t *Thread) onSnapshot(records []contract.Message) {
	t.mu.Lock()
	t.msgs = records
	t.errMsg = ""
	t.mu.Unlock()

	window := records
	if len(window) > cache.WindowSize {
		window = window[:cache.WindowSize]
	}
	_ = t.cache.PutMessages(t.ctx, t.groupID, window)
}

func (t *Thread) onError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = nil
	t.errMsg = err.Error()
}

// Messages returns the current view state, newest first.
func (t *Thread) Messages() []contract.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]contract.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// Err returns the subscription error string, or "" when healthy.
func (t *Thread) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// Sending reports whether a send is in flight; the compose affordance is
// disabled while true.
func (t *Thread) Sending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sending
}

// SendText submits body as a text message. Whitespace-only bodies are
// rejected before any remote call. The send is not reflected locally; it
// appears when the listener echoes it back. A failed send clears the sending
// flag and stays otherwise silent in the thread state.
func (t *Thread) SendText(ctx context.Context, body string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return ErrEmptyMessage
	}
	t.setSending(true)
	defer t.setSending(false)
	return t.sender.SendText(ctx, t.groupID, t.me, trimmed)
}

// SendImage submits an inline image message.
func (t *Thread) SendImage(ctx context.Context, base64Data, mimeType string) error {
	if base64Data == "" {
		return ErrNoImage
	}
	if mimeType == "" {
		mimeType = defaultImageType
	}
	t.setSending(true)
	defer t.setSending(false)
	return t.sender.SendImage(ctx, t.groupID, t.me, base64Data, mimeType)
}

func (t *Thread) setSending(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sending = v
}

// Close tears down the live subscription. Safe to call more than once.
func (t *Thread) Close() {
	t.sub.Dispose()
}
