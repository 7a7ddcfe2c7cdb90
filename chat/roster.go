package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/klipach/groupchat/contract"
	"github.com/klipach/groupchat/live"
)

var (
	ErrMissingGroupName = errors.New("group name is required")
	ErrNoMembers        = errors.New("select at least one member")
)

// GroupCreator creates a group document. Backed by store.Store.
type GroupCreator interface {
	CreateGroup(ctx context.Context, name, createdBy string, members []string) (string, error)
}

// Roster is the create-group screen: a live directory of every other user
// plus the selection being assembled into a new group.
type Roster struct {
	self    string
	creator GroupCreator
	sub     *live.Subscription

	mu       sync.Mutex
	users    []contract.User
	selected map[string]bool
	errMsg   string
}

// OpenRoster mounts the member picker for the user identified by self.
func OpenRoster(ctx context.Context, self string, creator GroupCreator, src live.Source[contract.User]) *Roster {
	r := &Roster{
		self:     self,
		creator:  creator,
		selected: map[string]bool{},
	}
	r.sub = live.Watch(ctx, src, r.onSnapshot, r.onError)
	return r
}

func (r *Roster) onSnapshot(records []contract.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]contract.User, 0, len(records))
	for _, u := range records {
		if u.UID != r.self {
			users = append(users, u)
		}
	}
	r.users = users
	r.errMsg = ""
}

func (r *Roster) onError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = nil
	r.errMsg = err.Error()
}

// Users returns every selectable user, excluding self.
func (r *Roster) Users() []contract.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]contract.User, len(r.users))
	copy(out, r.users)
	return out
}

func (r *Roster) Err() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}

// Toggle flips the selection state of uid.
func (r *Roster) Toggle(uid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected[uid] {
		delete(r.selected, uid)
	} else {
		r.selected[uid] = true
	}
}

// Selected returns the currently selected member uids.
func (r *Roster) Selected() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.selected))
	for uid := range r.selected {
		out = append(out, uid)
	}
	return out
}

// Create validates the name and selection, then creates the group with the
// selected members plus self. Validation blocks before any remote call.
func (r *Roster) Create(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMissingGroupName
	}
	members := r.Selected()
	if len(members) == 0 {
		return "", ErrNoMembers
	}
	return r.creator.CreateGroup(ctx, name, r.self, members)
}

// Close tears down the live subscription. Safe to call more than once.
func (r *Roster) Close() {
	r.sub.Dispose()
}
