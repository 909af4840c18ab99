package service

import (
	"context"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/repair/repository"
)

// ProfileService handles user and company profile saves. Both are
// upsert-only full overwrites.
type ProfileService struct {
	profiles       *repository.ProfileRepo
	company        *repository.CompanyRepo
	defaultCompany string
}

func NewProfileService(profiles *repository.ProfileRepo, company *repository.CompanyRepo, defaultCompany string) *ProfileService {
	return &ProfileService{profiles: profiles, company: company, defaultCompany: defaultCompany}
}

// GetProfile reads the identity's profile; nil until first save.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.profiles.Get(ctx, userID)
}

// SaveProfile fully replaces the identity's profile document.
func (s *ProfileService) SaveProfile(ctx context.Context, userID string, p domain.UserProfile) error {
	return s.profiles.Save(ctx, userID, p)
}

// GetCompany reads the shared company profile, falling back to the
// configured default until the singleton has been saved once.
func (s *ProfileService) GetCompany(ctx context.Context) (domain.CompanyProfile, error) {
	p, err := s.company.Get(ctx)
	if err != nil {
		return domain.CompanyProfile{}, err
	}
	if p == nil {
		return domain.DefaultCompanyProfile(s.defaultCompany), nil
	}
	return *p, nil
}

// SaveCompany fully replaces the company singleton.
func (s *ProfileService) SaveCompany(ctx context.Context, p domain.CompanyProfile) error {
	return s.company.Save(ctx, p)
}
