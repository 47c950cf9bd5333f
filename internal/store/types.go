// File path: internal/store/types.go
package store

import (
	"database/sql"
	"time"
)

// Category is a complaint category reference row.
type Category struct {
	ID          int64  `db:"id" yaml:"-"`
	CodeAlpha   string `db:"code_alpha" yaml:"codeAlpha"`
	CodeNumeric string `db:"code_numeric" yaml:"codeNumeric"`
	Name        string `db:"name" yaml:"name"`
}

// Institution is an authority petitions can be routed to.
type Institution struct {
	ID    int64  `db:"id" yaml:"-"`
	Code  string `db:"code" yaml:"code"`
	Name  string `db:"name" yaml:"name"`
	Email string `db:"email" yaml:"email"`
}

type DocType struct {
	ID          int64  `db:"id" yaml:"-"`
	Code        string `db:"code" yaml:"code"`
	Name        string `db:"name" yaml:"name"`
	Description string `db:"description" yaml:"description"`
}

// Template is an incident template joined with its category. The category
// columns are NULL when the template is not linked to a category.
type Template struct {
	ID                  int64          `db:"id"`
	IncidentType        int            `db:"incident_type"`
	DisplayName         string         `db:"display_name"`
	HTML                string         `db:"html"`
	CategoryID          sql.NullInt64  `db:"category_id"`
	CategoryCodeAlpha   sql.NullString `db:"category_code_alpha"`
	CategoryCodeNumeric sql.NullString `db:"category_code_numeric"`
	CategoryName        sql.NullString `db:"category_name"`
}

// PersonalData is the submitter's contact record, unique per
// (email, phone number).
type PersonalData struct {
	ID          int64  `db:"id"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	Email       string `db:"email"`
	Country     string `db:"country"`
	County      string `db:"county"`
	City        string `db:"city"`
	Street      string `db:"street"`
	HouseNumber string `db:"house_number"`
	Building    string `db:"building"`
	Staircase   string `db:"staircase"`
	Apartment   string `db:"apartment"`
	PhoneNumber string `db:"phone_number"`
}

// ComplaintContent is one submitted petition. IsValidated is not part of
// the insert: new rows are always unvalidated.
type ComplaintContent struct {
	IncidentTypeID       int
	CategoryID           int64
	DocTypeID            int64
	PrimaryInstitutionID *int64
	IsPublic             bool
	ObjNo                int64
	GenNo                int64
	TotalNo              int64
	FullPublicRepNo      string
	FullInternalRepNo    string
	IncidentDate         time.Time
	IncidentCounty       string
	IncidentCity         string
	IncidentAddress      string
	DestinationInstitute string
	IncidentDescription  string
	S3Key                string
	AttachmentsS3        []string
}

// Recorded reports the identifiers produced by RecordComplaint.
type Recorded struct {
	ComplaintID         int64
	PersonalDataID      int64
	PersonalDataCreated bool
}

// ComplaintRow is the stored view of a complaint used for status lookups.
type ComplaintRow struct {
	ID                int64     `db:"id"`
	PersonalDataID    int64     `db:"personal_data_id"`
	CategoryID        int64     `db:"category_id"`
	CategoryName      string    `db:"category_name"`
	ObjNo             int64     `db:"obj_no"`
	GenNo             int64     `db:"gen_no"`
	TotalNo           int64     `db:"total_no"`
	FullPublicRepNo   string    `db:"full_public_rep_no"`
	FullInternalRepNo string    `db:"full_internal_rep_no"`
	IsValidated       bool      `db:"is_validated"`
	IsPublic          bool      `db:"is_public"`
	S3Key             string    `db:"s3_key"`
	AttachmentsS3     string    `db:"attachments_s3"`
	CreatedAt         time.Time `db:"created_at"`
}
