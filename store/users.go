package store

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/klipach/groupchat/contract"
	"github.com/klipach/groupchat/live"
)

// UpsertUser merge-writes the profile document for uid. Both registration and
// login run it, so a profile exists after the first successful sign-in of any
// kind. username is stored lowercase.
func (s *Store) UpsertUser(ctx context.Context, uid, email, username string) error {
	_, err := s.client.Collection(contract.UsersCollection).Doc(uid).Set(ctx, map[string]any{
		"uid":         uid,
		"email":       strings.ToLower(email),
		"username":    strings.ToLower(username),
		"displayName": username,
		"createdAt":   firestore.ServerTimestamp,
		"updatedAt":   firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("store: upserting user %s: %w", uid, err)
	}
	return nil
}

// UsernameTaken reports whether any profile already claims username. This is
// a plain read with no transaction or unique index behind it; two
// near-simultaneous registrations can both pass the check. The race is a
// known property of the schema, not something to fix here.
func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	it := s.client.Collection(contract.UsersCollection).
		Where("username", "==", strings.ToLower(username)).
		Limit(1).
		Documents(ctx)
	defer it.Stop()
	_, err := it.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: checking username %q: %w", username, err)
	}
	return true, nil
}

// EmailByUsername resolves the sign-in email for a username, or "" when no
// profile matches.
func (s *Store) EmailByUsername(ctx context.Context, username string) (string, error) {
	it := s.client.Collection(contract.UsersCollection).
		Where("username", "==", strings.ToLower(username)).
		Limit(1).
		Documents(ctx)
	defer it.Stop()
	doc, err := it.Next()
	if err == iterator.Done {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: resolving username %q: %w", username, err)
	}
	var u contract.User
	if err := doc.DataTo(&u); err != nil {
		return "", fmt.Errorf("store: decoding user %s: %w", doc.Ref.ID, err)
	}
	return u.Email, nil
}

// Users returns a live source over every registered profile. Feeds the
// member picker when creating a group.
func (s *Store) Users(ctx context.Context) live.Source[contract.User] {
	it := s.client.Collection(contract.UsersCollection).Snapshots(ctx)
	return &snapshotSource[contract.User]{
		it:     it,
		decode: decodeUser,
	}
}

func decodeUser(doc *firestore.DocumentSnapshot) (contract.User, error) {
	var u contract.User
	if err := doc.DataTo(&u); err != nil {
		return u, fmt.Errorf("store: decoding user %s: %w", doc.Ref.ID, err)
	}
	return u, nil
}
