// Package store is the Firestore-backed document layer: group and message
// collections, the outgoing write path, and live snapshot sources consumed by
// the screen controllers through the live package.
package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// Sender identifies the signed-in author of outgoing writes.
type Sender struct {
	UID   string
	Email string
}

type Store struct {
	client *firestore.Client
}

// New connects to Firestore. An empty projectID falls back to the GCP
// metadata server, which resolves when running on Google infrastructure.
func New(ctx context.Context, projectID string, opts ...option.ClientOption) (*Store, error) {
	if projectID == "" {
		var err error
		projectID, err = metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("store: resolving project ID: %w", err)
		}
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("store: creating firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
