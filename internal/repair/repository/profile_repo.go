package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/store"
)

// ProfileRepo owns the per-identity profile documents. Saves are full
// overwrites, not merges.
type ProfileRepo struct {
	store store.Store
	paths store.Paths
}

func NewProfileRepo(s store.Store, paths store.Paths) *ProfileRepo {
	return &ProfileRepo{store: s, paths: paths}
}

// Get reads the profile for one identity. A missing document returns
// (nil, nil): the profile is absent until first save.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	doc, err := r.store.Get(ctx, r.paths.UserProfileDoc(userID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p := DecodeUserProfile(doc)
	return &p, nil
}

// Save fully replaces the profile document and stamps updatedAt with a
// server timestamp.
func (r *ProfileRepo) Save(ctx context.Context, userID string, p domain.UserProfile) error {
	fields := map[string]interface{}{
		fieldFullName:  p.FullName,
		fieldPhone:     p.Phone,
		fieldAddress:   p.Address,
		fieldUpdatedAt: store.ServerTimestamp,
	}
	if err := r.store.Upsert(ctx, r.paths.UserProfileDoc(userID), fields); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Watch opens the standing subscription on one identity's profile document.
func (r *ProfileRepo) Watch(ctx context.Context, userID string) (<-chan store.Snapshot, store.CancelFunc) {
	return r.store.WatchDocument(ctx, r.paths.UserProfileDoc(userID))
}
