package store

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/klipach/groupchat/live"
)

// snapshotSource adapts a Firestore snapshot iterator to live.Source. Every
// yielded slice is the complete current result set for the query, in server
// order; there is no diffing against the previous set.
type snapshotSource[T any] struct {
	it     *firestore.QuerySnapshotIterator
	decode func(*firestore.DocumentSnapshot) (T, error)
}

func (s *snapshotSource[T]) Next(_ context.Context) ([]T, error) {
	snap, err := s.it.Next()
	if err != nil {
		if errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
			return nil, live.ErrStopped
		}
		return nil, fmt.Errorf("store: awaiting snapshot: %w", err)
	}
	docs, err := snap.Documents.GetAll()
	if err != nil {
		return nil, fmt.Errorf("store: reading snapshot documents: %w", err)
	}
	records := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := s.decode(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *snapshotSource[T]) Stop() {
	s.it.Stop()
}
