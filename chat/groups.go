package chat

import (
	"context"
	"sync"

	"github.com/klipach/groupchat/contract"
	"github.com/klipach/groupchat/live"
)

// GroupList is the group-list screen: the groups containing the signed-in
// user, replaced verbatim on every snapshot. Groups are never mutated
// locally outside a snapshot, so there is nothing to merge.
type GroupList struct {
	sub *live.Subscription

	mu     sync.Mutex
	groups []contract.Group
	errMsg string
}

// OpenGroupList mounts the list over a groups-containing-member source.
func OpenGroupList(ctx context.Context, src live.Source[contract.Group]) *GroupList {
	g := &GroupList{}
	g.sub = live.Watch(ctx, src, g.onSnapshot, g.onError)
	return g
}

func (g *GroupList) onSnapshot(records []contract.Group) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.groups = records
	g.errMsg = ""
}

// onError clears the list: a failed subscription shows an error string and
// an empty result, never a stale previous list.
func (g *GroupList) onError(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.groups = nil
	g.errMsg = err.Error()
}

func (g *GroupList) Groups() []contract.Group {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]contract.Group, len(g.groups))
	copy(out, g.groups)
	return out
}

func (g *GroupList) Err() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errMsg
}

// Close tears down the live subscription. Safe to call more than once.
func (g *GroupList) Close() {
	g.sub.Dispose()
}
