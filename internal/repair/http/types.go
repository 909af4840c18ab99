package http

import "github.com/homefix-app/homefix-backend/internal/repair/domain"

type sessionRequest struct {
	Token string `json:"token,omitempty"`
}

type submitRequest struct {
	Category       string `json:"category"`
	Urgency        string `json:"urgency"`
	Description    string `json:"description"`
	Address        string `json:"address"`
	PreferredDates string `json:"preferredDates"`
}

func (r submitRequest) toDomain() domain.NewRequest {
	return domain.NewRequest{
		Category:       domain.Category(r.Category),
		Urgency:        domain.Urgency(r.Urgency),
		Description:    r.Description,
		Address:        r.Address,
		PreferredDates: r.PreferredDates,
	}
}

type proposeRequest struct {
	Time string `json:"time"`
}

type profileRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type companyRequest struct {
	Name    string `json:"name"`
	LogoURL string `json:"logoUrl"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}
