package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/store"
)

// RequestRepo owns the repairRequests collection. All writes are in-place
// document updates; requests are never deleted or replaced.
type RequestRepo struct {
	store store.Store
	paths store.Paths
}

func NewRequestRepo(s store.Store, paths store.Paths) *RequestRepo {
	return &RequestRepo{store: s, paths: paths}
}

// Create appends a new request in the pending state. The submitter's name
// and phone are stamped as snapshot copies; later profile edits do not
// touch past requests. The creation timestamp is server-assigned.
func (r *RequestRepo) Create(ctx context.Context, userID string, profile domain.UserProfile, req domain.NewRequest) (domain.RepairRequest, error) {
	fields := map[string]interface{}{
		fieldCategory:       string(req.Category),
		fieldUrgency:        string(req.Urgency),
		fieldDescription:    req.Description,
		fieldAddress:        req.Address,
		fieldPreferredDates: req.PreferredDates,
		fieldStatus:         string(domain.StatusPending),
		fieldUserID:         userID,
		fieldUserName:       profile.FullName,
		fieldUserPhone:      profile.Phone,
		fieldCreatedAt:      store.ServerTimestamp,
	}

	id, err := r.store.Create(ctx, r.paths.RequestsCollection(), fields)
	if err != nil {
		return domain.RepairRequest{}, fmt.Errorf("submit request: %w", err)
	}

	doc, err := r.store.Get(ctx, r.paths.RequestDoc(id))
	if err != nil {
		return domain.RepairRequest{}, fmt.Errorf("read back request: %w", err)
	}
	return DecodeRequest(doc), nil
}

// Get reads one request by ID.
func (r *RequestRepo) Get(ctx context.Context, id string) (domain.RepairRequest, error) {
	doc, err := r.store.Get(ctx, r.paths.RequestDoc(id))
	if errors.Is(err, store.ErrNotFound) {
		return domain.RepairRequest{}, domain.ErrRequestNotFound
	}
	if err != nil {
		return domain.RepairRequest{}, fmt.Errorf("get request: %w", err)
	}
	return DecodeRequest(doc), nil
}

// List reads the full global collection once, display-ordered.
func (r *RequestRepo) List(ctx context.Context) ([]domain.RepairRequest, error) {
	docs, err := r.store.List(ctx, r.paths.RequestsCollection())
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return DecodeRequests(docs), nil
}

// ApplyTransition runs the lifecycle table against the request's current
// state and writes only the effect fields. proposedTime is set on propose,
// cleared to absent on decline, and untouched otherwise.
func (r *RequestRepo) ApplyTransition(ctx context.Context, id string, event domain.Event, proposedTime string) (domain.RepairRequest, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return domain.RepairRequest{}, err
	}

	next, err := domain.Transition(current.Status, event)
	if err != nil {
		return domain.RepairRequest{}, fmt.Errorf("%w: %s cannot %s", domain.ErrInvalidTransition, current.Status, event)
	}

	fields := map[string]interface{}{
		fieldStatus: string(next),
	}
	switch event {
	case domain.EventPropose:
		fields[fieldProposedTime] = proposedTime
	case domain.EventDecline:
		fields[fieldProposedTime] = store.Delete
	}

	if err := r.store.Update(ctx, r.paths.RequestDoc(id), fields); err != nil {
		return domain.RepairRequest{}, fmt.Errorf("apply %s: %w", event, err)
	}

	current.Status = next
	switch event {
	case domain.EventPropose:
		current.ProposedTime = &proposedTime
	case domain.EventDecline:
		current.ProposedTime = nil
	}
	return current, nil
}

// Watch opens the standing subscription on the global collection.
func (r *RequestRepo) Watch(ctx context.Context) (<-chan store.Snapshot, store.CancelFunc) {
	return r.store.WatchCollection(ctx, r.paths.RequestsCollection())
}
