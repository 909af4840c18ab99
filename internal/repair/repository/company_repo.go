package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/store"
)

// CompanyRepo owns the shared company singleton, globally visible to every
// identity.
type CompanyRepo struct {
	store store.Store
	paths store.Paths
}

func NewCompanyRepo(s store.Store, paths store.Paths) *CompanyRepo {
	return &CompanyRepo{store: s, paths: paths}
}

// Get reads the company profile. A missing document returns (nil, nil);
// callers render the configured default until a save lands.
func (r *CompanyRepo) Get(ctx context.Context) (*domain.CompanyProfile, error) {
	doc, err := r.store.Get(ctx, r.paths.CompanyDoc())
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company profile: %w", err)
	}
	p := DecodeCompanyProfile(doc)
	return &p, nil
}

// Save fully replaces the company document.
func (r *CompanyRepo) Save(ctx context.Context, p domain.CompanyProfile) error {
	fields := map[string]interface{}{
		fieldCompanyName: p.Name,
		fieldLogoURL:     p.LogoURL,
		fieldPhone:       p.Phone,
		fieldEmail:       p.Email,
		fieldUpdatedAt:   store.ServerTimestamp,
	}
	if err := r.store.Upsert(ctx, r.paths.CompanyDoc(), fields); err != nil {
		return fmt.Errorf("save company profile: %w", err)
	}
	return nil
}

// Watch opens the standing subscription on the company document.
func (r *CompanyRepo) Watch(ctx context.Context) (<-chan store.Snapshot, store.CancelFunc) {
	return r.store.WatchDocument(ctx, r.paths.CompanyDoc())
}
