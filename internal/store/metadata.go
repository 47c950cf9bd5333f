// File path: internal/store/metadata.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/animalert/animalert/internal/metadata"
)

var _ metadata.Store = (*Store)(nil)

// Categories implements metadata.Store.
func (s *Store) Categories(ctx context.Context) ([]metadata.CategoryRecord, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	links := []struct {
		CategoryID int64  `db:"category_id"`
		Code       string `db:"code"`
		Name       string `db:"name"`
	}{}
	if err := s.db.SelectContext(ctx, &links, `SELECT ci.category_id, i.code, i.name FROM category_institutions ci
                INNER JOIN institutions i ON i.id = ci.institution_id
                ORDER BY ci.category_id, ci.position, i.code`); err != nil {
		return nil, fmt.Errorf("select category institutions: %w", err)
	}
	byCategory := make(map[int64][]metadata.InstitutionRecord, len(categories))
	for _, link := range links {
		byCategory[link.CategoryID] = append(byCategory[link.CategoryID], metadata.InstitutionRecord{Code: link.Code, Name: link.Name})
	}
	records := make([]metadata.CategoryRecord, 0, len(categories))
	for _, c := range categories {
		institutions := byCategory[c.ID]
		if institutions == nil {
			institutions = []metadata.InstitutionRecord{}
		}
		records = append(records, metadata.CategoryRecord{
			ID:           c.ID,
			CodeAlpha:    c.CodeAlpha,
			CodeNumeric:  c.CodeNumeric,
			Name:         c.Name,
			Institutions: institutions,
		})
	}
	return records, nil
}

// ComplaintStatus implements metadata.Store.
func (s *Store) ComplaintStatus(ctx context.Context, publicID string) (metadata.ComplaintStatus, error) {
	row, err := s.ComplaintByPublicID(ctx, publicID)
	if errors.Is(err, ErrNotFound) {
		return metadata.ComplaintStatus{}, fmt.Errorf("%w: %v", metadata.ErrNotFound, err)
	}
	if err != nil {
		return metadata.ComplaintStatus{}, err
	}
	return metadata.ComplaintStatus{
		PublicID:    row.FullPublicRepNo,
		Category:    row.CategoryName,
		IsValidated: row.IsValidated,
		IsPublic:    row.IsPublic,
		CreatedAt:   row.CreatedAt,
	}, nil
}
