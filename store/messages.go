package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/klipach/groupchat/contract"
	"github.com/klipach/groupchat/live"
)

// imageSummary is the literal shown as a group's last message after an image
// send. The mobile client renders the same string.
const imageSummary = "Image"

// SendText appends a text message to the group, then merge-updates the group
// summary. The two writes are deliberately not transactional: a failure
// between them leaves the message persisted and the summary stale until the
// next successful send re-syncs it.
func (s *Store) SendText(ctx context.Context, groupID string, from Sender, body string) error {
	_, _, err := s.messages(groupID).Add(ctx, map[string]any{
		"text":        body,
		"senderId":    from.UID,
		"senderEmail": from.Email,
		"createdAt":   firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("store: appending message to %s: %w", groupID, err)
	}
	return s.setSummary(ctx, groupID, body)
}

// SendImage appends an image message carrying the inline base64 payload and
// its MIME type. The record size is bounded only by the encoded image; image
// bytes are not offloaded to a separate blob store. Same two-write sequence
// and inconsistency window as SendText.
func (s *Store) SendImage(ctx context.Context, groupID string, from Sender, base64Data, mimeType string) error {
	_, _, err := s.messages(groupID).Add(ctx, map[string]any{
		"text":        "",
		"imageBase64": base64Data,
		"imageType":   mimeType,
		"senderId":    from.UID,
		"senderEmail": from.Email,
		"createdAt":   firestore.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("store: appending image to %s: %w", groupID, err)
	}
	return s.setSummary(ctx, groupID, imageSummary)
}

// Thread returns a live source over the group's messages, newest first.
func (s *Store) Thread(ctx context.Context, groupID string) live.Source[contract.Message] {
	it := s.messages(groupID).
		OrderBy("createdAt", firestore.Desc).
		Snapshots(ctx)
	return &snapshotSource[contract.Message]{
		it:     it,
		decode: decodeMessage,
	}
}

func (s *Store) messages(groupID string) *firestore.CollectionRef {
	return s.client.Collection(contract.GroupsCollection).Doc(groupID).Collection(contract.MessagesCollection)
}

func decodeMessage(doc *firestore.DocumentSnapshot) (contract.Message, error) {
	var m contract.Message
	if err := doc.DataTo(&m); err != nil {
		return m, fmt.Errorf("store: decoding message %s: %w", doc.Ref.ID, err)
	}
	m.ID = doc.Ref.ID
	return m, nil
}
