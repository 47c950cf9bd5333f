// File path: internal/store/seed.go
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/animalert/animalert/internal/common"
)

// Seed is the reference data loaded by `animalert seed`.
type Seed struct {
	DocTypes     []DocType      `yaml:"docTypes"`
	Institutions []Institution  `yaml:"institutions"`
	Categories   []SeedCategory `yaml:"categories"`
	Templates    []SeedTemplate `yaml:"templates"`
}

type SeedCategory struct {
	Category     `yaml:",inline"`
	Institutions []string `yaml:"institutions"`
}

// SeedTemplate carries template HTML inline or in a file resolved relative
// to the seed file.
type SeedTemplate struct {
	IncidentType int    `yaml:"incidentType"`
	Category     string `yaml:"category"`
	DisplayName  string `yaml:"displayName"`
	HTML         string `yaml:"html"`
	File         string `yaml:"file"`
}

// LoadSeed parses a YAML seed file and inlines template files.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	base := filepath.Dir(path)
	for i, tpl := range seed.Templates {
		if strings.TrimSpace(tpl.HTML) != "" || strings.TrimSpace(tpl.File) == "" {
			continue
		}
		file := tpl.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(base, file)
		}
		html, err := os.ReadFile(file)
		if err != nil {
			return Seed{}, fmt.Errorf("read template %d: %w", tpl.IncidentType, err)
		}
		seed.Templates[i].HTML = string(html)
	}
	return seed, nil
}

func (seed Seed) validate() error {
	institutions := make(map[string]struct{}, len(seed.Institutions))
	for _, inst := range seed.Institutions {
		code := strings.TrimSpace(inst.Code)
		if code == "" || len(code) > 5 {
			return fmt.Errorf("institution code %q must be 1-5 characters", inst.Code)
		}
		institutions[code] = struct{}{}
	}
	categories := make(map[string]struct{}, len(seed.Categories))
	for _, cat := range seed.Categories {
		if len(strings.TrimSpace(cat.CodeAlpha)) != 3 {
			return fmt.Errorf("category %q: alpha code must be 3 characters", cat.Name)
		}
		if len(strings.TrimSpace(cat.CodeNumeric)) != 2 {
			return fmt.Errorf("category %q: numeric code must be 2 characters", cat.Name)
		}
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("category %s: name required", cat.CodeAlpha)
		}
		for _, code := range cat.Institutions {
			if _, ok := institutions[strings.TrimSpace(code)]; !ok {
				return fmt.Errorf("category %s: unknown institution %q", cat.CodeAlpha, code)
			}
		}
		categories[strings.ToUpper(strings.TrimSpace(cat.CodeAlpha))] = struct{}{}
	}
	for _, dt := range seed.DocTypes {
		if len(strings.TrimSpace(dt.Code)) != 3 {
			return fmt.Errorf("doc type code %q must be 3 characters", dt.Code)
		}
	}
	for _, tpl := range seed.Templates {
		if tpl.IncidentType <= 0 {
			return fmt.Errorf("template %q: incident type must be positive", tpl.DisplayName)
		}
		if strings.TrimSpace(tpl.HTML) == "" {
			return fmt.Errorf("template %d: html required", tpl.IncidentType)
		}
		if tpl.Category != "" {
			if _, ok := categories[strings.ToUpper(strings.TrimSpace(tpl.Category))]; !ok {
				return fmt.Errorf("template %d: unknown category %q", tpl.IncidentType, tpl.Category)
			}
		}
	}
	return nil
}

// ApplySeed upserts the seed's reference data in one transaction. Running
// it twice leaves the database unchanged.
func (s *Store) ApplySeed(ctx context.Context, seed Seed) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := seed.validate(); err != nil {
		return err
	}
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, dt := range seed.DocTypes {
			dt.Code = strings.ToUpper(strings.TrimSpace(dt.Code))
			if err := upsertDocType(ctx, tx, s.dialect, dt); err != nil {
				return err
			}
		}
		institutionIDs := make(map[string]int64, len(seed.Institutions))
		for _, inst := range seed.Institutions {
			inst.Code = strings.TrimSpace(inst.Code)
			inst.Email = NormalizeEmail(inst.Email)
			id, err := upsertInstitution(ctx, tx, s.dialect, inst)
			if err != nil {
				return err
			}
			institutionIDs[inst.Code] = id
		}
		categoryIDs := make(map[string]int64, len(seed.Categories))
		for _, cat := range seed.Categories {
			cat.CodeAlpha = strings.ToUpper(strings.TrimSpace(cat.CodeAlpha))
			cat.CodeNumeric = strings.TrimSpace(cat.CodeNumeric)
			id, err := upsertCategory(ctx, tx, s.dialect, cat.Category)
			if err != nil {
				return err
			}
			categoryIDs[cat.CodeAlpha] = id
			linked := make([]int64, 0, len(cat.Institutions))
			for _, code := range cat.Institutions {
				linked = append(linked, institutionIDs[strings.TrimSpace(code)])
			}
			if err := linkInstitutions(ctx, tx, id, linked); err != nil {
				return err
			}
		}
		for _, tpl := range seed.Templates {
			var categoryID *int64
			if code := strings.ToUpper(strings.TrimSpace(tpl.Category)); code != "" {
				id := categoryIDs[code]
				categoryID = &id
			}
			if err := upsertTemplate(ctx, tx, s.dialect, tpl.IncidentType, categoryID, tpl.DisplayName, tpl.HTML); err != nil {
				return err
			}
		}
		return recordAudit(ctx, tx, "seed_applied", fmt.Sprintf("%d categories, %d institutions, %d templates",
			len(seed.Categories), len(seed.Institutions), len(seed.Templates)))
	})
	if err != nil {
		return err
	}
	common.Component("store").Info("store: seed applied",
		"categories", len(seed.Categories), "institutions", len(seed.Institutions), "templates", len(seed.Templates))
	return nil
}
