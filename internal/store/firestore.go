package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on Cloud Firestore. Snapshot listeners
// give the push delivery contract for free; server timestamps come from
// the firestore sentinel.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, translateSentinels(fields))
	if err != nil {
		return "", fmt.Errorf("create document: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Update(ctx context.Context, docPath string, fields map[string]interface{}) error {
	_, err := s.client.Doc(docPath).Set(ctx, translateSentinels(fields), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Upsert(ctx context.Context, docPath string, fields map[string]interface{}) error {
	_, err := s.client.Doc(docPath).Set(ctx, translateSentinels(fields))
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, docPath string) (Document, error) {
	snap, err := s.client.Doc(docPath).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return Document{ID: snap.Ref.ID, Fields: snap.Data()}, nil
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) WatchCollection(ctx context.Context, collection string) (<-chan Snapshot, CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)
		it := s.client.Collection(collection).Snapshots(ctx)
		defer it.Stop()

		for {
			qs, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				deliver(ctx, out, Snapshot{Err: fmt.Errorf("collection watch: %w", err)})
				return
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				deliver(ctx, out, Snapshot{Err: fmt.Errorf("collection watch read: %w", err)})
				return
			}
			docs := make([]Document, 0, len(snaps))
			for _, snap := range snaps {
				docs = append(docs, Document{ID: snap.Ref.ID, Fields: snap.Data()})
			}
			if !deliver(ctx, out, Snapshot{Docs: docs}) {
				return
			}
		}
	}()

	return out, CancelFunc(cancel)
}

func (s *FirestoreStore) WatchDocument(ctx context.Context, docPath string) (<-chan Snapshot, CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)
		it := s.client.Doc(docPath).Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				deliver(ctx, out, Snapshot{Err: fmt.Errorf("document watch: %w", err)})
				return
			}
			var docs []Document
			if snap.Exists() {
				docs = []Document{{ID: snap.Ref.ID, Fields: snap.Data()}}
			}
			if !deliver(ctx, out, Snapshot{Docs: docs}) {
				return
			}
		}
	}()

	return out, CancelFunc(cancel)
}

// deliver sends one snapshot unless the watch has been cancelled.
func deliver(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case out <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

// translateSentinels maps the store package's write sentinels onto the
// firestore ones.
func translateSentinels(fields map[string]interface{}) map[string]interface{} {
	translated := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch v.(type) {
		case serverTimestamp:
			translated[k] = firestore.ServerTimestamp
		case deleteField:
			translated[k] = firestore.Delete
		default:
			translated[k] = v
		}
	}
	return translated
}
