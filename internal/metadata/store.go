// File path: internal/metadata/store.go
package metadata

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("metadata: not found")

// InstitutionRecord is an institution as exposed to API clients. Routing
// addresses stay server side.
type InstitutionRecord struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CategoryRecord represents a complaint category with the institutions its
// petitions are routed to, primary first.
type CategoryRecord struct {
	ID           int64               `json:"id"`
	CodeAlpha    string              `json:"codeAlpha"`
	CodeNumeric  string              `json:"codeNumeric"`
	Name         string              `json:"name"`
	Institutions []InstitutionRecord `json:"institutions"`
}

// ComplaintStatus is the public view of a submitted complaint.
type ComplaintStatus struct {
	PublicID    string    `json:"publicId"`
	Category    string    `json:"category"`
	IsValidated bool      `json:"isValidated"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store exposes read-only reference and status data to the HTTP layer.
type Store interface {
	Categories(ctx context.Context) ([]CategoryRecord, error)
	ComplaintStatus(ctx context.Context, publicID string) (ComplaintStatus, error)
}
