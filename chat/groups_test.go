package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/klipach/groupchat/contract"
)

func group(id, name, lastMessage string) contract.Group {
	return contract.Group{
		ID:          id,
		Name:        name,
		Members:     []string{"uid-a", "uid-b"},
		CreatedBy:   "uid-a",
		LastMessage: lastMessage,
		LastAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestGroupListReplacesVerbatim(t *testing.T) {
	src := newFakeSource[contract.Group]()
	gl := OpenGroupList(context.Background(), src)
	defer gl.Close()

	src.Push([]contract.Group{group("g1", "Trip", "hi")})
	src.Push([]contract.Group{
		group("g2", "Work", ""),
		group("g1", "Trip", "Image"),
	})
	waitFor(t, func() bool { return len(gl.Groups()) == 2 })

	got := gl.Groups()
	if got[0].ID != "g2" || got[1].ID != "g1" {
		t.Errorf("groups = %v; want the last snapshot verbatim", got)
	}
	if got[1].LastMessage != "Image" {
		t.Errorf("g1 lastMessage = %q; want %q", got[1].LastMessage, "Image")
	}
}

func TestGroupListErrorClearsList(t *testing.T) {
	src := newFakeSource[contract.Group]()
	gl := OpenGroupList(context.Background(), src)
	defer gl.Close()

	src.Push([]contract.Group{group("g1", "Trip", "hi")})
	waitFor(t, func() bool { return len(gl.Groups()) == 1 })

	src.Fail(errors.New("permission denied"))
	waitFor(t, func() bool { return gl.Err() != "" })

	if got := gl.Groups(); len(got) != 0 {
		t.Errorf("groups after error = %v; want empty, never stale", got)
	}
}

func TestGroupListEmptySnapshot(t *testing.T) {
	src := newFakeSource[contract.Group]()
	gl := OpenGroupList(context.Background(), src)
	defer gl.Close()

	src.Push([]contract.Group{group("g1", "Trip", "hi")})
	waitFor(t, func() bool { return len(gl.Groups()) == 1 })

	src.Push(nil)
	waitFor(t, func() bool { return len(gl.Groups()) == 0 })

	if gl.Err() != "" {
		t.Errorf("empty snapshot set error %q; want none", gl.Err())
	}
}
