// File path: internal/store/complaints.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/jmoiron/sqlx"
)

// RecordComplaint stores the submitter's personal data and the complaint in
// one transaction. Personal data is reused when a row with the same
// (email, phone number) already exists; its other fields are left as they
// were first recorded.
func (s *Store) RecordComplaint(ctx context.Context, person PersonalData, complaint ComplaintContent) (Recorded, error) {
	if err := s.ensureReady(); err != nil {
		return Recorded{}, err
	}
	person.Email = NormalizeEmail(person.Email)
	person.PhoneNumber = NormalizePhone(person.PhoneNumber)
	if person.Email == "" || person.PhoneNumber == "" {
		return Recorded{}, fmt.Errorf("personal data requires email and phone number")
	}
	attachments := complaint.AttachmentsS3
	if attachments == nil {
		attachments = []string{}
	}
	encoded, err := json.Marshal(attachments)
	if err != nil {
		return Recorded{}, fmt.Errorf("encode attachments: %w", err)
	}

	var recorded Recorded
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		personID, created, err := s.resolvePersonalData(ctx, tx, person)
		if err != nil {
			return err
		}
		recorded.PersonalDataID = personID
		recorded.PersonalDataCreated = created

		res, err := tx.ExecContext(ctx, `INSERT INTO complaint_contents(
                        personal_data_id, incident_type_id, category_id, doc_type_id, primary_institution_id,
                        is_public, obj_no, gen_no, total_no, full_public_rep_no, full_internal_rep_no,
                        is_validated, incident_date, incident_county, incident_city, incident_address,
                        destination_institute, incident_description, s3_key, attachments_s3)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			personID, complaint.IncidentTypeID, complaint.CategoryID, complaint.DocTypeID, nullIfNil(complaint.PrimaryInstitutionID),
			complaint.IsPublic, complaint.ObjNo, complaint.GenNo, complaint.TotalNo, complaint.FullPublicRepNo, complaint.FullInternalRepNo,
			false, complaint.IncidentDate.UTC(), complaint.IncidentCounty, nullIfEmpty(complaint.IncidentCity), nullIfEmpty(complaint.IncidentAddress),
			complaint.DestinationInstitute, complaint.IncidentDescription, complaint.S3Key, string(encoded))
		if err != nil {
			return fmt.Errorf("insert complaint: %w", err)
		}
		if recorded.ComplaintID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("complaint id: %w", err)
		}
		return recordAudit(ctx, tx, "complaint_recorded", complaint.FullPublicRepNo)
	})
	if err != nil {
		return Recorded{}, err
	}
	return recorded, nil
}

func (s *Store) resolvePersonalData(ctx context.Context, tx *sqlx.Tx, person PersonalData) (int64, bool, error) {
	query := `INSERT INTO personal_data(first_name, last_name, email, country, county, city, street,
                house_number, building, staircase, apartment, phone_number)
                VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)` + s.dialect.insertIgnore("email", "phone_number")
	res, err := tx.ExecContext(ctx, query,
		strings.TrimSpace(person.FirstName), strings.TrimSpace(person.LastName), person.Email,
		strings.TrimSpace(person.Country), strings.TrimSpace(person.County), strings.TrimSpace(person.City),
		strings.TrimSpace(person.Street), strings.TrimSpace(person.HouseNumber),
		nullIfEmpty(person.Building), nullIfEmpty(person.Staircase), nullIfEmpty(person.Apartment), person.PhoneNumber)
	if err != nil {
		return 0, false, fmt.Errorf("insert personal data: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("personal data rows: %w", err)
	}
	var id int64
	if err := tx.GetContext(ctx, &id, `SELECT id FROM personal_data WHERE email = ? AND phone_number = ?`, person.Email, person.PhoneNumber); err != nil {
		return 0, false, fmt.Errorf("load personal data: %w", err)
	}
	return id, affected == 1, nil
}

// ComplaintByPublicID loads a complaint by its public identifier.
func (s *Store) ComplaintByPublicID(ctx context.Context, publicID string) (*ComplaintRow, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return nil, fmt.Errorf("public id required")
	}
	var row ComplaintRow
	err := s.db.GetContext(ctx, &row, `SELECT
                cc.id, cc.personal_data_id, cc.category_id, c.name AS category_name,
                cc.obj_no, cc.gen_no, cc.total_no, cc.full_public_rep_no, cc.full_internal_rep_no,
                cc.is_validated, cc.is_public, cc.s3_key, cc.attachments_s3, cc.created_at
        FROM complaint_contents cc
        INNER JOIN complaint_categories c ON c.id = cc.category_id
        WHERE cc.full_public_rep_no = ?`, publicID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("complaint %s: %w", publicID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select complaint: %w", err)
	}
	return &row, nil
}

// CountPersonalData reports how many personal-data rows match an email and
// phone number after normalisation.
func (s *Store) CountPersonalData(ctx context.Context, email, phone string) (int, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM personal_data WHERE email = ? AND phone_number = ?`,
		NormalizeEmail(email), NormalizePhone(phone)); err != nil {
		return 0, fmt.Errorf("count personal data: %w", err)
	}
	return count, nil
}

// Attachments decodes the stored attachment keys.
func (r ComplaintRow) Attachments() []string {
	var keys []string
	if err := json.Unmarshal([]byte(r.AttachmentsS3), &keys); err != nil {
		return nil
	}
	return keys
}

// NormalizeEmail reduces email to its lower-cased address part, so a
// display-name form dedupes with the bare address.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	if addr, err := mail.ParseAddress(email); err == nil {
		email = addr.Address
	}
	return strings.ToLower(email)
}

// NormalizePhone drops the separators people type into phone numbers so
// "0722 123 456" and "0722-123-456" dedupe to the same record.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch r {
		case ' ', '-', '.', '(', ')', '\t':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
