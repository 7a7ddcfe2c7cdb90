package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/klipach/groupchat/contract"
)

type fakeCreator struct {
	mu      sync.Mutex
	name    string
	by      string
	members []string
	calls   int
}

func (f *fakeCreator) CreateGroup(_ context.Context, name, createdBy string, members []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.name = name
	f.by = createdBy
	f.members = members
	return "g-new", nil
}

func user(uid, username string) contract.User {
	return contract.User{UID: uid, Email: username + "@example.com", Username: username, DisplayName: username}
}

func TestRosterExcludesSelf(t *testing.T) {
	src := newFakeSource[contract.User]()
	r := OpenRoster(context.Background(), "uid-a", &fakeCreator{}, src)
	defer r.Close()

	src.Push([]contract.User{user("uid-a", "alice"), user("uid-b", "bob"), user("uid-c", "carol")})
	waitFor(t, func() bool { return len(r.Users()) == 2 })

	for _, u := range r.Users() {
		if u.UID == "uid-a" {
			t.Error("roster lists the signed-in user")
		}
	}
}

func TestRosterToggle(t *testing.T) {
	r := OpenRoster(context.Background(), "uid-a", &fakeCreator{}, newFakeSource[contract.User]())
	defer r.Close()

	r.Toggle("uid-b")
	r.Toggle("uid-c")
	r.Toggle("uid-b") // deselect

	got := r.Selected()
	if len(got) != 1 || got[0] != "uid-c" {
		t.Errorf("selected = %v; want [uid-c]", got)
	}
}

func TestRosterCreateValidation(t *testing.T) {
	tests := []struct {
		name        string
		groupName   string
		selection   []string
		expectedErr error
	}{
		{name: "empty name", groupName: "  ", selection: []string{"uid-b"}, expectedErr: ErrMissingGroupName},
		{name: "no members", groupName: "Trip", selection: nil, expectedErr: ErrNoMembers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{}
			r := OpenRoster(context.Background(), "uid-a", creator, newFakeSource[contract.User]())
			defer r.Close()
			for _, uid := range tt.selection {
				r.Toggle(uid)
			}

			_, err := r.Create(context.Background(), tt.groupName)
			if !errors.Is(err, tt.expectedErr) {
				t.Errorf("Create = %v; want %v", err, tt.expectedErr)
			}
			if creator.calls != 0 {
				t.Error("remote create attempted on invalid input")
			}
		})
	}
}

func TestRosterCreate(t *testing.T) {
	creator := &fakeCreator{}
	r := OpenRoster(context.Background(), "uid-a", creator, newFakeSource[contract.User]())
	defer r.Close()

	r.Toggle("uid-b")
	r.Toggle("uid-c")

	id, err := r.Create(context.Background(), "  Trip  ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != "g-new" {
		t.Errorf("group id = %s; want g-new", id)
	}
	if creator.name != "Trip" {
		t.Errorf("name = %q; want trimmed %q", creator.name, "Trip")
	}
	if creator.by != "uid-a" {
		t.Errorf("createdBy = %s; want uid-a", creator.by)
	}
	sort.Strings(creator.members)
	if len(creator.members) != 2 || creator.members[0] != "uid-b" || creator.members[1] != "uid-c" {
		t.Errorf("members = %v; want [uid-b uid-c]", creator.members)
	}
}
