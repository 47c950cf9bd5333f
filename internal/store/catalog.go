// File path: internal/store/catalog.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// TemplateByIncidentType returns the template registered for an incident
// type together with its category codes. A template without a category is
// returned with invalid category fields; ErrNotFound means no template.
func (s *Store) TemplateByIncidentType(ctx context.Context, incidentType int) (*Template, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	var tpl Template
	err := s.db.GetContext(ctx, &tpl, `SELECT
                t.id, t.incident_type, t.display_name, t.html, t.category_id,
                c.code_alpha AS category_code_alpha,
                c.code_numeric AS category_code_numeric,
                c.name AS category_name
        FROM incident_templates t
        LEFT JOIN complaint_categories c ON c.id = t.category_id
        WHERE t.incident_type = ?`, incidentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template for incident type %d: %w", incidentType, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select template: %w", err)
	}
	return &tpl, nil
}

// InstitutionsForCategory lists the institutions linked to a category,
// primary first.
func (s *Store) InstitutionsForCategory(ctx context.Context, categoryID int64) ([]Institution, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	institutions := []Institution{}
	if err := s.db.SelectContext(ctx, &institutions, `SELECT i.id, i.code, i.name, i.email FROM institutions i
                INNER JOIN category_institutions ci ON ci.institution_id = i.id
                WHERE ci.category_id = ?
                ORDER BY ci.position, i.code`, categoryID); err != nil {
		return nil, fmt.Errorf("select institutions: %w", err)
	}
	return institutions, nil
}

// EnsureDocType returns the doc type with the given code, creating it when
// absent. Concurrent callers converge on the same row.
func (s *Store) EnsureDocType(ctx context.Context, code, name, description string) (*DocType, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, fmt.Errorf("doc type code required")
	}
	var docType DocType
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		query := `INSERT INTO doc_types(code, name, description) VALUES(?, ?, ?)` + s.dialect.insertIgnore("code")
		if _, err := tx.ExecContext(ctx, query, code, name, description); err != nil {
			return fmt.Errorf("upsert doc type: %w", err)
		}
		if err := tx.GetContext(ctx, &docType, `SELECT id, code, name, COALESCE(description, '') AS description FROM doc_types WHERE code = ?`, code); err != nil {
			return fmt.Errorf("load doc type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &docType, nil
}

// ListCategories lists every category ordered by numeric code.
func (s *Store) ListCategories(ctx context.Context) ([]Category, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	categories := []Category{}
	if err := s.db.SelectContext(ctx, &categories, `SELECT id, code_alpha, code_numeric, name FROM complaint_categories ORDER BY code_numeric`); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}

func upsertCategory(ctx context.Context, tx *sqlx.Tx, d dialect, category Category) (int64, error) {
	query := `INSERT INTO complaint_categories(code_alpha, code_numeric, name) VALUES(?, ?, ?)` +
		d.upsert([]string{"code_alpha"}, "code_numeric", "name")
	if _, err := tx.ExecContext(ctx, query, category.CodeAlpha, category.CodeNumeric, category.Name); err != nil {
		return 0, fmt.Errorf("upsert category %s: %w", category.CodeAlpha, err)
	}
	var id int64
	if err := tx.GetContext(ctx, &id, `SELECT id FROM complaint_categories WHERE code_alpha = ?`, category.CodeAlpha); err != nil {
		return 0, fmt.Errorf("load category %s: %w", category.CodeAlpha, err)
	}
	return id, nil
}

func upsertInstitution(ctx context.Context, tx *sqlx.Tx, d dialect, institution Institution) (int64, error) {
	query := `INSERT INTO institutions(code, name, email) VALUES(?, ?, ?)` +
		d.upsert([]string{"code"}, "name", "email")
	if _, err := tx.ExecContext(ctx, query, institution.Code, institution.Name, institution.Email); err != nil {
		return 0, fmt.Errorf("upsert institution %s: %w", institution.Code, err)
	}
	var id int64
	if err := tx.GetContext(ctx, &id, `SELECT id FROM institutions WHERE code = ?`, institution.Code); err != nil {
		return 0, fmt.Errorf("load institution %s: %w", institution.Code, err)
	}
	return id, nil
}

func upsertDocType(ctx context.Context, tx *sqlx.Tx, d dialect, docType DocType) error {
	query := `INSERT INTO doc_types(code, name, description) VALUES(?, ?, ?)` +
		d.upsert([]string{"code"}, "name", "description")
	if _, err := tx.ExecContext(ctx, query, docType.Code, docType.Name, docType.Description); err != nil {
		return fmt.Errorf("upsert doc type %s: %w", docType.Code, err)
	}
	return nil
}

func linkInstitutions(ctx context.Context, tx *sqlx.Tx, categoryID int64, institutionIDs []int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM category_institutions WHERE category_id = ?`, categoryID); err != nil {
		return fmt.Errorf("clear category institutions: %w", err)
	}
	for position, institutionID := range institutionIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO category_institutions(category_id, institution_id, position) VALUES(?, ?, ?)`,
			categoryID, institutionID, position); err != nil {
			return fmt.Errorf("link institution %d: %w", institutionID, err)
		}
	}
	return nil
}

func upsertTemplate(ctx context.Context, tx *sqlx.Tx, d dialect, incidentType int, categoryID *int64, displayName, html string) error {
	query := `INSERT INTO incident_templates(incident_type, category_id, display_name, html, updated_at) VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)` +
		d.upsert([]string{"incident_type"}, "category_id", "display_name", "html", "updated_at")
	if _, err := tx.ExecContext(ctx, query, incidentType, nullIfNil(categoryID), displayName, html); err != nil {
		return fmt.Errorf("upsert template %d: %w", incidentType, err)
	}
	return nil
}
