package store

import "fmt"

// Paths builds the document paths for one app namespace. The layout
// mirrors the hosted deployment: per-user profile documents, one shared
// company document, one global request collection.
type Paths struct {
	AppID string
}

func (p Paths) UserProfileDoc(uid string) string {
	return fmt.Sprintf("artifacts/%s/users/%s/settings/profile", p.AppID, uid)
}

func (p Paths) CompanyDoc() string {
	return fmt.Sprintf("artifacts/%s/settings/company", p.AppID)
}

func (p Paths) RequestsCollection() string {
	return fmt.Sprintf("artifacts/%s/public/data/repairRequests", p.AppID)
}

func (p Paths) RequestDoc(id string) string {
	return p.RequestsCollection() + "/" + id
}
