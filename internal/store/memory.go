package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store with the same push-delivery contract
// as Firestore. It backs development mode and the test suite; it is not a
// durability layer.
type MemoryStore struct {
	mu       sync.Mutex
	docs     map[string]map[string]interface{} // docPath -> fields
	watchers map[string][]*memWatcher          // scope (collection or doc path) -> watchers
	lastTS   time.Time
}

type memWatcher struct {
	scope  string
	ch     chan Snapshot
	done   chan struct{}
	cancel func()
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		docs:     make(map[string]map[string]interface{}),
		watchers: make(map[string][]*memWatcher),
	}
}

func (s *MemoryStore) Create(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	path := collection + "/" + id
	s.docs[path] = s.resolveSentinels(fields, nil)
	s.notifyLocked(collection, path)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, docPath string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.docs[docPath]
	s.docs[docPath] = s.resolveSentinels(fields, existing)
	s.notifyLocked(parentCollection(docPath), docPath)
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, docPath string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[docPath] = s.resolveSentinels(fields, nil)
	s.notifyLocked(parentCollection(docPath), docPath)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, docPath string) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields, ok := s.docs[docPath]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: docID(docPath), Fields: cloneFields(fields)}, nil
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectionDocsLocked(collection), nil
}

func (s *MemoryStore) WatchCollection(ctx context.Context, collection string) (<-chan Snapshot, CancelFunc) {
	return s.watch(ctx, collection, func() Snapshot {
		return Snapshot{Docs: s.collectionDocsLocked(collection)}
	})
}

func (s *MemoryStore) WatchDocument(ctx context.Context, docPath string) (<-chan Snapshot, CancelFunc) {
	return s.watch(ctx, docPath, func() Snapshot {
		if fields, ok := s.docs[docPath]; ok {
			return Snapshot{Docs: []Document{{ID: docID(docPath), Fields: cloneFields(fields)}}}
		}
		return Snapshot{}
	})
}

// watch registers a watcher and delivers the initial snapshot immediately,
// matching the remote store's attach behavior.
func (s *MemoryStore) watch(ctx context.Context, scope string, snapshot func() Snapshot) (<-chan Snapshot, CancelFunc) {
	w := &memWatcher{
		scope: scope,
		ch:    make(chan Snapshot, 16),
		done:  make(chan struct{}),
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			ws := s.watchers[w.scope]
			for i, other := range ws {
				if other == w {
					s.watchers[w.scope] = append(ws[:i], ws[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
			close(w.done)
			close(w.ch)
		})
	}
	w.cancel = cancel

	s.mu.Lock()
	s.watchers[scope] = append(s.watchers[scope], w)
	w.send(snapshot())
	s.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-w.done:
			}
		}()
	}

	return w.ch, CancelFunc(cancel)
}

// send delivers without blocking; when the buffer is full the oldest
// snapshot is dropped, because any later snapshot supersedes it.
func (w *memWatcher) send(snap Snapshot) {
	select {
	case <-w.done:
		return
	default:
	}
	for {
		select {
		case w.ch <- snap:
			return
		default:
			select {
			case <-w.ch:
			default:
			}
		}
	}
}

// FailWatches delivers a terminal error on every watch of the scope and
// tears those watches down, the way a remote listener failure surfaces:
// one errored snapshot, then a closed channel.
func (s *MemoryStore) FailWatches(scope string, err error) {
	s.mu.Lock()
	ws := append([]*memWatcher(nil), s.watchers[scope]...)
	s.mu.Unlock()

	for _, w := range ws {
		w.send(Snapshot{Err: err})
		w.cancel()
	}
}

func (s *MemoryStore) notifyLocked(collection, docPath string) {
	for _, w := range s.watchers[collection] {
		w.send(Snapshot{Docs: s.collectionDocsLocked(collection)})
	}
	for _, w := range s.watchers[docPath] {
		if fields, ok := s.docs[docPath]; ok {
			w.send(Snapshot{Docs: []Document{{ID: docID(docPath), Fields: cloneFields(fields)}}})
		} else {
			w.send(Snapshot{})
		}
	}
}

func (s *MemoryStore) collectionDocsLocked(collection string) []Document {
	prefix := collection + "/"
	var docs []Document
	for path, fields := range s.docs {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if strings.Contains(path[len(prefix):], "/") {
			continue // subcollection document, not a direct child
		}
		docs = append(docs, Document{ID: docID(path), Fields: cloneFields(fields)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// resolveSentinels applies write sentinels against the existing fields.
// Server timestamps are kept strictly increasing so creation order stays
// observable even within one clock tick.
func (s *MemoryStore) resolveSentinels(fields map[string]interface{}, existing map[string]interface{}) map[string]interface{} {
	resolved := cloneFields(existing)
	if resolved == nil {
		resolved = make(map[string]interface{}, len(fields))
	}
	for k, v := range fields {
		switch v.(type) {
		case serverTimestamp:
			resolved[k] = s.nextTimestampLocked()
		case deleteField:
			delete(resolved, k)
		default:
			resolved[k] = v
		}
	}
	return resolved
}

func (s *MemoryStore) nextTimestampLocked() time.Time {
	ts := time.Now().UTC()
	if !ts.After(s.lastTS) {
		ts = s.lastTS.Add(time.Microsecond)
	}
	s.lastTS = ts
	return ts
}

func cloneFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}
	c := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		c[k] = v
	}
	return c
}

func parentCollection(docPath string) string {
	i := strings.LastIndex(docPath, "/")
	if i < 0 {
		return ""
	}
	return docPath[:i]
}

func docID(docPath string) string {
	i := strings.LastIndex(docPath, "/")
	return docPath[i+1:]
}
