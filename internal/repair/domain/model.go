package domain

import (
	"sort"
	"time"
)

// Category of a repair request.
type Category string

const (
	CategoryPlumbing   Category = "plumbing"
	CategoryElectrical Category = "electrical"
	CategoryHVAC       Category = "hvac"
	CategoryStructural Category = "structural"
	CategoryGeneral    Category = "general"
)

// Urgency of a repair request.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

func ValidCategory(c Category) bool {
	switch c {
	case CategoryPlumbing, CategoryElectrical, CategoryHVAC, CategoryStructural, CategoryGeneral:
		return true
	}
	return false
}

func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// RepairRequest is the remote document for one repair ticket. UserName and
// UserPhone are copied from the submitter's profile at creation time and
// deliberately do not track later profile edits. ProposedTime is present
// only while the request is waiting for customer confirmation; declining
// clears it to absent, not to an empty string.
type RepairRequest struct {
	ID             string    `json:"id"`
	Category       Category  `json:"category"`
	Urgency        Urgency   `json:"urgency"`
	Description    string    `json:"description"`
	Address        string    `json:"address"`
	PreferredDates string    `json:"preferredDates"`
	Status         Status    `json:"status"`
	ProposedTime   *string   `json:"proposedTime,omitempty"`
	UserID         string    `json:"userId"`
	UserName       string    `json:"userName"`
	UserPhone      string    `json:"userPhone"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewRequest is the customer-supplied part of a submission.
type NewRequest struct {
	Category       Category `json:"category"`
	Urgency        Urgency  `json:"urgency"`
	Description    string   `json:"description"`
	Address        string   `json:"address"`
	PreferredDates string   `json:"preferredDates"`
}

// UserProfile is the per-identity profile document. Upsert-only: each save
// fully replaces the document.
type UserProfile struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Complete reports whether the profile satisfies the submission guard.
func (p UserProfile) Complete() bool {
	return p.FullName != "" && p.Phone != ""
}

// CompanyProfile is the shared singleton visible to every identity.
type CompanyProfile struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// DefaultCompanyProfile is what views render until the company
// subscription delivers.
func DefaultCompanyProfile(name string) CompanyProfile {
	return CompanyProfile{Name: name}
}

// SortRequests orders requests for display: createdAt descending, ties
// broken by ID ascending so equal timestamps stay deterministic.
func SortRequests(reqs []RepairRequest) {
	sort.SliceStable(reqs, func(i, j int) bool {
		if !reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
		}
		return reqs[i].ID < reqs[j].ID
	})
}

// PersonalView filters the global collection down to one identity's
// requests. Ordering of the input is preserved.
func PersonalView(all []RepairRequest, userID string) []RepairRequest {
	mine := make([]RepairRequest, 0, len(all))
	for _, r := range all {
		if r.UserID == userID {
			mine = append(mine, r)
		}
	}
	return mine
}

// CountByStatus counts requests in the given state.
func CountByStatus(reqs []RepairRequest, s Status) int {
	n := 0
	for _, r := range reqs {
		if r.Status == s {
			n++
		}
	}
	return n
}

// CustomerInbox is the customer's actionable subset: proposals awaiting an
// answer plus confirmed in-progress jobs.
func CustomerInbox(mine []RepairRequest) []RepairRequest {
	inbox := make([]RepairRequest, 0, len(mine))
	for _, r := range mine {
		if r.Status == StatusWaitingConfirmation || r.Status == StatusInProgress {
			inbox = append(inbox, r)
		}
	}
	return inbox
}
