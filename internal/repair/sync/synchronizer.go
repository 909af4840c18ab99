// Package sync keeps the local mirrors of the three live scopes — own
// profile, company profile, global request collection — in step with the
// remote store, and fans mirror changes out to attached views.
package sync

import (
	"context"
	"log"
	gosync "sync"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/repair/repository"
	"github.com/homefix-app/homefix-backend/internal/store"
)

// Scope names an updated mirror in a change notification.
type Scope string

const (
	ScopeRequests Scope = "requests"
	ScopeProfile  Scope = "profile"
	ScopeCompany  Scope = "company"
)

// Synchronizer is bound to exactly one identity. It exclusively owns the
// three mirrors; everything else reads copies. The three subscriptions are
// independent and may deliver in any relative order — views render with
// the company default until that scope arrives. An identity change means
// Close and a fresh Synchronizer; watches must never outlive the session.
type Synchronizer struct {
	userID string

	mu       gosync.RWMutex
	profile  *domain.UserProfile
	company  domain.CompanyProfile
	all      []domain.RepairRequest
	closed   bool
	watchers map[int]chan Scope
	nextID   int

	cancels []store.CancelFunc
}

// Deps are the collaborators a Synchronizer pulls its scopes from.
type Deps struct {
	Requests       *repository.RequestRepo
	Profiles       *repository.ProfileRepo
	Company        *repository.CompanyRepo
	DefaultCompany string
}

// Open resolves nothing itself: the identity must already be established.
// It attaches the three subscriptions and returns once they are opened
// (not once they have delivered — partial readiness is normal).
func Open(ctx context.Context, userID string, deps Deps) *Synchronizer {
	s := &Synchronizer{
		userID:   userID,
		company:  domain.DefaultCompanyProfile(deps.DefaultCompany),
		watchers: make(map[int]chan Scope),
	}

	reqCh, cancelReqs := deps.Requests.Watch(ctx)
	profCh, cancelProf := deps.Profiles.Watch(ctx, userID)
	compCh, cancelComp := deps.Company.Watch(ctx)
	s.cancels = []store.CancelFunc{cancelReqs, cancelProf, cancelComp}

	go s.consumeRequests(reqCh)
	go s.consumeProfile(profCh)
	go s.consumeCompany(compCh)

	return s
}

func (s *Synchronizer) consumeRequests(ch <-chan store.Snapshot) {
	for snap := range ch {
		if snap.Err != nil {
			// The mirror stops updating but keeps its last snapshot;
			// dependent views degrade to stale-but-present data.
			log.Printf("[warn] scope=requests user=%s subscription error: %v", s.userID, snap.Err)
			return
		}
		reqs := repository.DecodeRequests(snap.Docs)

		s.mu.Lock()
		s.all = reqs
		s.mu.Unlock()

		s.notify(ScopeRequests)
	}
}

func (s *Synchronizer) consumeProfile(ch <-chan store.Snapshot) {
	for snap := range ch {
		if snap.Err != nil {
			log.Printf("[warn] scope=profile user=%s subscription error: %v", s.userID, snap.Err)
			return
		}
		var profile *domain.UserProfile
		if len(snap.Docs) > 0 {
			p := repository.DecodeUserProfile(snap.Docs[0])
			profile = &p
		}

		s.mu.Lock()
		s.profile = profile
		s.mu.Unlock()

		s.notify(ScopeProfile)
	}
}

func (s *Synchronizer) consumeCompany(ch <-chan store.Snapshot) {
	for snap := range ch {
		if snap.Err != nil {
			log.Printf("[warn] scope=company user=%s subscription error: %v", s.userID, snap.Err)
			return
		}
		if len(snap.Docs) == 0 {
			// Singleton not saved yet; keep rendering the default.
			continue
		}
		company := repository.DecodeCompanyProfile(snap.Docs[0])

		s.mu.Lock()
		s.company = company
		s.mu.Unlock()

		s.notify(ScopeCompany)
	}
}

// Subscribe attaches a view to mirror-change notifications. The returned
// detach func must be called on view teardown.
func (s *Synchronizer) Subscribe() (<-chan Scope, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Scope, 8)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	s.watchers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if w, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(w)
		}
	}
}

func (s *Synchronizer) notify(scope Scope) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		select {
		case ch <- scope:
		default:
			// A slow view misses intermediate notifications; the next
			// read sees the current mirror anyway.
		}
	}
}

// Close cancels all three subscriptions and detaches every view. It is
// called on identity change and on session teardown; forgetting it leaks
// listeners into the next session.
func (s *Synchronizer) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
}

// UserID returns the identity this synchronizer is bound to.
func (s *Synchronizer) UserID() string { return s.userID }

// Profile returns the mirrored profile, nil until first save or before the
// profile subscription has delivered.
func (s *Synchronizer) Profile() *domain.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Company returns the mirrored company profile, or the default until the
// singleton delivers.
func (s *Synchronizer) Company() domain.CompanyProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.company
}

// AllRequests returns the global mirror, display-ordered. Staff view.
func (s *Synchronizer) AllRequests() []domain.RepairRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RepairRequest, len(s.all))
	copy(out, s.all)
	return out
}

// MyRequests returns the personal derived view of the global mirror.
func (s *Synchronizer) MyRequests() []domain.RepairRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.PersonalView(s.all, s.userID)
}

// Inbox returns the identity's actionable requests.
func (s *Synchronizer) Inbox() []domain.RepairRequest {
	return domain.CustomerInbox(s.MyRequests())
}

// InboxCount counts the identity's proposals awaiting an answer.
func (s *Synchronizer) InboxCount() int {
	return domain.CountByStatus(s.MyRequests(), domain.StatusWaitingConfirmation)
}

// PendingCount counts pending requests across the whole collection.
func (s *Synchronizer) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CountByStatus(s.all, domain.StatusPending)
}
