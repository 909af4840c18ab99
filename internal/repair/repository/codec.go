package repository

import (
	"time"

	"github.com/homefix-app/homefix-backend/internal/repair/domain"
	"github.com/homefix-app/homefix-backend/internal/store"
)

// Field names as they appear in the remote documents.
const (
	fieldCategory       = "category"
	fieldUrgency        = "urgency"
	fieldDescription    = "description"
	fieldAddress        = "address"
	fieldPreferredDates = "preferredDates"
	fieldStatus         = "status"
	fieldProposedTime   = "proposedTime"
	fieldUserID         = "userId"
	fieldUserName       = "userName"
	fieldUserPhone      = "userPhone"
	fieldCreatedAt      = "createdAt"
	fieldUpdatedAt      = "updatedAt"

	fieldFullName = "fullName"
	fieldPhone    = "phone"

	fieldCompanyName = "name"
	fieldLogoURL     = "logoUrl"
	fieldEmail       = "email"
)

// DecodeRequest maps a raw document onto a RepairRequest. Unknown or
// missing fields decode to zero values; proposedTime stays nil when the
// field is absent.
func DecodeRequest(doc store.Document) domain.RepairRequest {
	req := domain.RepairRequest{
		ID:             doc.ID,
		Category:       domain.Category(getString(doc.Fields, fieldCategory)),
		Urgency:        domain.Urgency(getString(doc.Fields, fieldUrgency)),
		Description:    getString(doc.Fields, fieldDescription),
		Address:        getString(doc.Fields, fieldAddress),
		PreferredDates: getString(doc.Fields, fieldPreferredDates),
		Status:         domain.Status(getString(doc.Fields, fieldStatus)),
		UserID:         getString(doc.Fields, fieldUserID),
		UserName:       getString(doc.Fields, fieldUserName),
		UserPhone:      getString(doc.Fields, fieldUserPhone),
		CreatedAt:      getTime(doc.Fields, fieldCreatedAt),
	}
	if v, ok := doc.Fields[fieldProposedTime]; ok {
		if s, ok := v.(string); ok {
			req.ProposedTime = &s
		}
	}
	return req
}

// DecodeRequests decodes a collection snapshot into display order.
// Documents without a recognizable lifecycle status are corrupt or
// foreign; they are kept out of every view.
func DecodeRequests(docs []store.Document) []domain.RepairRequest {
	reqs := make([]domain.RepairRequest, 0, len(docs))
	for _, doc := range docs {
		req := DecodeRequest(doc)
		if !domain.ValidStatus(req.Status) {
			continue
		}
		reqs = append(reqs, req)
	}
	domain.SortRequests(reqs)
	return reqs
}

func DecodeUserProfile(doc store.Document) domain.UserProfile {
	return domain.UserProfile{
		FullName: getString(doc.Fields, fieldFullName),
		Phone:    getString(doc.Fields, fieldPhone),
		Address:  getString(doc.Fields, fieldAddress),
	}
}

func DecodeCompanyProfile(doc store.Document) domain.CompanyProfile {
	return domain.CompanyProfile{
		Name:    getString(doc.Fields, fieldCompanyName),
		LogoURL: getString(doc.Fields, fieldLogoURL),
		Phone:   getString(doc.Fields, fieldPhone),
		Email:   getString(doc.Fields, fieldEmail),
	}
}

func getString(fields map[string]interface{}, key string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getTime(fields map[string]interface{}, key string) time.Time {
	if v, ok := fields[key]; ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Time{}
}
