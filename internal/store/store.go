// Package store is the boundary to the remote document store. Everything
// above it sees push-delivered snapshots and three mutation primitives;
// persistence, delivery and consistency are the store's problem.
package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

// ServerTimestamp marks a field to be stamped by the store at write time.
var ServerTimestamp = serverTimestamp{}

// Delete marks a field to be cleared to absent on a merge update.
var Delete = deleteField{}

type serverTimestamp struct{}
type deleteField struct{}

// Document is one remote document: its server-assigned ID plus raw fields.
type Document struct {
	ID     string
	Fields map[string]interface{}
}

// Snapshot is one delivery on a watch channel. For collection watches Docs
// holds the full current scope; for document watches it holds zero or one
// entry. Err marks a terminal subscription failure — the channel is closed
// right after and the last good snapshot remains the caller's truth.
type Snapshot struct {
	Docs []Document
	Err  error
}

// CancelFunc tears down a watch. It must be called on identity change and
// on view teardown; the watch channel closes after cancellation.
type CancelFunc func()

// Store is the remote mutable document store.
//
// Watches are infinite push streams: every change in scope, local or
// remote, redelivers the full current snapshot. A new call opens a fresh
// subscription.
type Store interface {
	// Create appends a document to a collection and returns its
	// server-assigned ID. ServerTimestamp sentinels are resolved by the
	// store. No retry on failure.
	Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error)

	// Update merges the given fields into an existing document. Delete
	// sentinels clear fields to absent.
	Update(ctx context.Context, docPath string, fields map[string]interface{}) error

	// Upsert fully replaces a document's fields, creating it if absent.
	Upsert(ctx context.Context, docPath string, fields map[string]interface{}) error

	// Get reads a single document. ErrNotFound if it does not exist.
	Get(ctx context.Context, docPath string) (Document, error)

	// List reads the full collection once, without subscribing.
	List(ctx context.Context, collection string) ([]Document, error)

	// WatchCollection opens a standing subscription on a collection.
	WatchCollection(ctx context.Context, collection string) (<-chan Snapshot, CancelFunc)

	// WatchDocument opens a standing subscription on a single document.
	WatchDocument(ctx context.Context, docPath string) (<-chan Snapshot, CancelFunc)
}
