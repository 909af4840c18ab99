package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAssignsIDAndTimestamp(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	id, err := s.Create(ctx, "col", map[string]interface{}{
		"status":    "pending",
		"createdAt": ServerTimestamp,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, "col/"+id)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, "pending", doc.Fields["status"])
	_, ok := doc.Fields["createdAt"].(time.Time)
	assert.True(t, ok, "createdAt should resolve to a timestamp")
}

func TestMemoryStore_ServerTimestampsAreMonotonic(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var prev time.Time
	for i := 0; i < 50; i++ {
		id, err := s.Create(ctx, "col", map[string]interface{}{"createdAt": ServerTimestamp})
		require.NoError(t, err)
		doc, err := s.Get(ctx, "col/"+id)
		require.NoError(t, err)
		ts := doc.Fields["createdAt"].(time.Time)
		assert.True(t, ts.After(prev), "timestamps must strictly increase")
		prev = ts
	}
}

func TestMemoryStore_UpdateMergesAndDeletes(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	id, err := s.Create(ctx, "col", map[string]interface{}{
		"status":       "waiting_confirmation",
		"proposedTime": "Tomorrow 9AM",
		"description":  "leak",
	})
	require.NoError(t, err)
	path := "col/" + id

	err = s.Update(ctx, path, map[string]interface{}{
		"status":       "pending",
		"proposedTime": Delete,
	})
	require.NoError(t, err)

	doc, err := s.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "pending", doc.Fields["status"])
	assert.Equal(t, "leak", doc.Fields["description"], "untouched fields survive a merge")
	_, present := doc.Fields["proposedTime"]
	assert.False(t, present, "deleted field must be absent, not empty")
}

func TestMemoryStore_UpsertReplaces(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "profiles/u1", map[string]interface{}{
		"fullName": "Dana Smith",
		"phone":    "555-0100",
	}))
	require.NoError(t, s.Upsert(ctx, "profiles/u1", map[string]interface{}{
		"fullName": "Dana Jones",
	}))

	doc, err := s.Get(ctx, "profiles/u1")
	require.NoError(t, err)
	assert.Equal(t, "Dana Jones", doc.Fields["fullName"])
	_, present := doc.Fields["phone"]
	assert.False(t, present, "upsert is a full replace, not a merge")
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemory()
	_, err := s.Get(context.Background(), "col/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_WatchCollectionDeliversOnEveryChange(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	ch, cancel := s.WatchCollection(ctx, "col")
	defer cancel()

	// Initial snapshot arrives on attach.
	snap := recvSnapshot(t, ch)
	assert.Empty(t, snap.Docs)

	id, err := s.Create(ctx, "col", map[string]interface{}{"status": "pending"})
	require.NoError(t, err)
	snap = recvSnapshot(t, ch)
	require.Len(t, snap.Docs, 1)
	assert.Equal(t, id, snap.Docs[0].ID)

	// Updates redeliver the full scope.
	require.NoError(t, s.Update(ctx, "col/"+id, map[string]interface{}{"status": "completed"}))
	snap = recvSnapshot(t, ch)
	require.Len(t, snap.Docs, 1)
	assert.Equal(t, "completed", snap.Docs[0].Fields["status"])
}

func TestMemoryStore_WatchDocument(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	ch, cancel := s.WatchDocument(ctx, "settings/company")
	defer cancel()

	snap := recvSnapshot(t, ch)
	assert.Empty(t, snap.Docs, "missing document watches start empty")

	require.NoError(t, s.Upsert(ctx, "settings/company", map[string]interface{}{"name": "First Call Maintenance"}))
	snap = recvSnapshot(t, ch)
	require.Len(t, snap.Docs, 1)
	assert.Equal(t, "First Call Maintenance", snap.Docs[0].Fields["name"])
}

func TestMemoryStore_CancelClosesWatch(t *testing.T) {
	s := NewMemory()

	ch, cancel := s.WatchCollection(context.Background(), "col")
	recvSnapshot(t, ch)
	cancel()

	select {
	case _, open := <-ch:
		assert.False(t, open, "channel must close after cancellation")
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed after cancel")
	}

	// Writes after cancellation must not reach the cancelled watcher.
	_, err := s.Create(context.Background(), "col", map[string]interface{}{"x": 1})
	require.NoError(t, err)
}

func TestMemoryStore_WatchIgnoresSubcollections(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "col/doc/sub/child", map[string]interface{}{"x": 1}))

	docs, err := s.List(ctx, "col")
	require.NoError(t, err)
	assert.Empty(t, docs, "subcollection documents are not direct children")
}

func TestMemoryStore_FailWatchesDeliversErrorThenCloses(t *testing.T) {
	s := NewMemory()
	ch, cancel := s.WatchCollection(context.Background(), "things")
	defer cancel()

	recvSnapshot(t, ch) // initial

	s.FailWatches("things", errors.New("listener torn down"))

	var snap Snapshot
	select {
	case s, open := <-ch:
		require.True(t, open, "watch channel closed unexpectedly")
		snap = s
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	require.Error(t, snap.Err)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel closes after the errored snapshot")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watch channel to close")
	}

	// Watchers on other scopes are untouched.
	other, cancelOther := s.WatchCollection(context.Background(), "elsewhere")
	defer cancelOther()
	assert.NoError(t, recvSnapshot(t, other).Err)
}

func recvSnapshot(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap, open := <-ch:
		require.True(t, open, "watch channel closed unexpectedly")
		require.NoError(t, snap.Err)
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}
