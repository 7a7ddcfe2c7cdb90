package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/klipach/groupchat/contract"
	"github.com/klipach/groupchat/live"
)

// CreateGroup creates a group with the given member uids plus the creator,
// deduplicated, and empty summary fields. Members are append-only afterwards;
// there is no leave or remove operation.
func (s *Store) CreateGroup(ctx context.Context, name, createdBy string, members []string) (string, error) {
	uids := memberSet(createdBy, members)
	ref, _, err := s.client.Collection(contract.GroupsCollection).Add(ctx, map[string]any{
		"name":        name,
		"members":     uids,
		"createdBy":   createdBy,
		"createdAt":   firestore.ServerTimestamp,
		"lastMessage": "",
		"lastAt":      firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("store: creating group: %w", err)
	}
	return ref.ID, nil
}

// memberSet builds the initial member list: the creator first, then the
// invitees, deduplicated in order.
func memberSet(createdBy string, members []string) []string {
	seen := map[string]bool{createdBy: true}
	uids := []string{createdBy}
	for _, uid := range members {
		if !seen[uid] {
			seen[uid] = true
			uids = append(uids, uid)
		}
	}
	return uids
}

// GroupsOf returns a live source over the groups containing uid as a member.
func (s *Store) GroupsOf(ctx context.Context, uid string) live.Source[contract.Group] {
	it := s.client.Collection(contract.GroupsCollection).
		Where("members", "array-contains", uid).
		Snapshots(ctx)
	return &snapshotSource[contract.Group]{
		it:     it,
		decode: decodeGroup,
	}
}

func decodeGroup(doc *firestore.DocumentSnapshot) (contract.Group, error) {
	var g contract.Group
	if err := doc.DataTo(&g); err != nil {
		return g, fmt.Errorf("store: decoding group %s: %w", doc.Ref.ID, err)
	}
	g.ID = doc.Ref.ID
	return g, nil
}

// setSummary merge-writes the denormalized lastMessage/lastAt fields on the
// group document.
func (s *Store) setSummary(ctx context.Context, groupID, lastMessage string) error {
	_, err := s.client.Collection(contract.GroupsCollection).Doc(groupID).Set(ctx, map[string]any{
		"lastMessage": lastMessage,
		"lastAt":      firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("store: updating group %s summary: %w", groupID, err)
	}
	return nil
}
