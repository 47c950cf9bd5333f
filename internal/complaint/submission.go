// File path: internal/complaint/submission.go
package complaint

import (
	"fmt"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/animalert/animalert/internal/objectstore"
)

const maxAttachments = 10

// PersonalData is the submitter's contact block.
type PersonalData struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Country     string `json:"country"`
	County      string `json:"county"`
	City        string `json:"city"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	Building    string `json:"building,omitempty"`
	Staircase   string `json:"staircase,omitempty"`
	Apartment   string `json:"apartment,omitempty"`
}

func (p PersonalData) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Address renders the postal address on one line, skipping empty parts.
func (p PersonalData) Address() string {
	parts := []string{}
	street := strings.TrimSpace(p.Street)
	if street != "" {
		if nr := strings.TrimSpace(p.HouseNumber); nr != "" {
			street += " nr. " + nr
		}
		parts = append(parts, "Str. "+street)
	}
	for _, part := range []struct{ label, value string }{
		{"bl.", p.Building}, {"sc.", p.Staircase}, {"ap.", p.Apartment},
	} {
		if v := strings.TrimSpace(part.value); v != "" {
			parts = append(parts, part.label+" "+v)
		}
	}
	for _, v := range []string{p.City, p.County, p.Country} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// Submission is a complaint as received from the citizen form.
type Submission struct {
	PersonalData        PersonalData `json:"personalData"`
	IncidentType        int          `json:"incidentType"`
	IncidentDate        string       `json:"incidentDate"`
	IncidentCounty      string       `json:"incidentCounty"`
	IncidentCity        string       `json:"incidentCity,omitempty"`
	IncidentAddress     string       `json:"incidentAddress,omitempty"`
	IncidentDescription string       `json:"incidentDescription"`
	IsPublic            bool         `json:"isPublic"`
	Attachments         []string     `json:"attachments,omitempty"`
}

// IncidentTime parses IncidentDate as a calendar date or an RFC 3339
// timestamp.
func (s Submission) IncidentTime() (time.Time, error) {
	raw := strings.TrimSpace(s.IncidentDate)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("incident date %q: expected YYYY-MM-DD or RFC 3339", raw)
	}
	return t, nil
}

// Validate checks the submission and returns a BAD_REQUEST *Error naming
// the first problem found.
func (s Submission) Validate() error {
	p := s.PersonalData
	required := []struct{ field, value string }{
		{"personalData.firstName", p.FirstName},
		{"personalData.lastName", p.LastName},
		{"personalData.email", p.Email},
		{"personalData.phoneNumber", p.PhoneNumber},
		{"personalData.country", p.Country},
		{"personalData.county", p.County},
		{"personalData.city", p.City},
		{"personalData.street", p.Street},
		{"personalData.houseNumber", p.HouseNumber},
		{"incidentCounty", s.IncidentCounty},
		{"incidentDescription", s.IncidentDescription},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return badRequest(r.field+" is required", nil)
		}
	}
	email := strings.TrimSpace(p.Email)
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return badRequest("personalData.email is invalid", err)
	}
	if addr.Address != email {
		return badRequest("personalData.email must be a bare address", nil)
	}
	if s.IncidentType <= 0 {
		return badRequest("incidentType must be a positive integer", nil)
	}
	if _, err := s.IncidentTime(); err != nil {
		return badRequest("incidentDate is invalid", err)
	}
	if len(s.Attachments) > maxAttachments {
		return badRequest(fmt.Sprintf("at most %d attachments are allowed", maxAttachments), nil)
	}
	for _, key := range s.Attachments {
		if !validAttachmentKey(key) {
			return badRequest(fmt.Sprintf("attachment %q is not an uploaded attachment", key), nil)
		}
	}
	return nil
}

func validAttachmentKey(key string) bool {
	if !strings.HasPrefix(key, objectstore.AttachmentPrefix) || len(key) == len(objectstore.AttachmentPrefix) {
		return false
	}
	return path.Clean(key) == key
}
