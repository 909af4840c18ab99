package service

import (
	"context"
	"strings"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/repair/repository"
)

// LifecycleService owns repair request transitions. It holds no copy of
// truth: every operation goes through the repository and the caller
// observes the result through its subscription mirror. Store failures
// propagate unchanged; user notification is the HTTP layer's job.
type LifecycleService struct {
	requests *repository.RequestRepo
	profiles *repository.ProfileRepo
}

func NewLifecycleService(requests *repository.RequestRepo, profiles *repository.ProfileRepo) *LifecycleService {
	return &LifecycleService{requests: requests, profiles: profiles}
}

// Submit creates a new pending request for the identity. The profile must
// carry a non-empty full name and phone: an incomplete profile rejects the
// submission without creating a document, and the caller redirects to
// profile setup.
func (s *LifecycleService) Submit(ctx context.Context, userID string, req domain.NewRequest) (domain.RepairRequest, error) {
	if !domain.ValidCategory(req.Category) {
		return domain.RepairRequest{}, domain.ErrInvalidCategory
	}
	if !domain.ValidUrgency(req.Urgency) {
		return domain.RepairRequest{}, domain.ErrInvalidUrgency
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return domain.RepairRequest{}, err
	}
	if profile == nil || !profile.Complete() {
		return domain.RepairRequest{}, domain.ErrProfileIncomplete
	}

	if req.Address == "" {
		req.Address = profile.Address
	}

	return s.requests.Create(ctx, userID, *profile, req)
}

// ProposeTimeSlot moves a pending request to waiting_confirmation with the
// staff's proposed time. A whitespace-only time is a no-op: no mutation,
// no state change.
func (s *LifecycleService) ProposeTimeSlot(ctx context.Context, id, time string) (domain.RepairRequest, error) {
	time = strings.TrimSpace(time)
	if time == "" {
		return domain.RepairRequest{}, domain.ErrEmptyTimeSlot
	}
	return s.requests.ApplyTransition(ctx, id, domain.EventPropose, time)
}

// Confirm accepts the proposed time; the request moves to in_progress.
func (s *LifecycleService) Confirm(ctx context.Context, id string) (domain.RepairRequest, error) {
	return s.requests.ApplyTransition(ctx, id, domain.EventConfirm, "")
}

// DeclineSchedule rejects the proposed time; the request returns to
// pending and proposedTime is cleared to absent.
func (s *LifecycleService) DeclineSchedule(ctx context.Context, id string) (domain.RepairRequest, error) {
	return s.requests.ApplyTransition(ctx, id, domain.EventDecline, "")
}

// Complete marks an in-progress job done.
func (s *LifecycleService) Complete(ctx context.Context, id string) (domain.RepairRequest, error) {
	return s.requests.ApplyTransition(ctx, id, domain.EventComplete, "")
}

// Get reads one request.
func (s *LifecycleService) Get(ctx context.Context, id string) (domain.RepairRequest, error) {
	return s.requests.Get(ctx, id)
}

// ListAll reads the global collection, display-ordered. Staff view.
func (s *LifecycleService) ListAll(ctx context.Context) ([]domain.RepairRequest, error) {
	return s.requests.List(ctx)
}

// ListMine reads the identity's personal view of the global collection.
func (s *LifecycleService) ListMine(ctx context.Context, userID string) ([]domain.RepairRequest, error) {
	all, err := s.requests.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.PersonalView(all, userID), nil
}
