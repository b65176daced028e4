package seed

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	upsertSection = `
INSERT INTO tax_sections (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
	upsertSubsection = `
INSERT INTO tax_subsections (name, section_id) VALUES ($1, $2)
ON CONFLICT (section_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
	upsertCategory = `
INSERT INTO tax_categories (name, subsection_id) VALUES ($1, $2)
ON CONFLICT (subsection_id, name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`
	upsertSubcategory = `
INSERT INTO tax_subcategories (name, category_id, filer_rate, non_filer_rate, tax_nature)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (category_id, name) DO UPDATE
SET filer_rate = EXCLUDED.filer_rate,
    non_filer_rate = EXCLUDED.non_filer_rate,
    tax_nature = EXCLUDED.tax_nature`
)

// Execer runs the seed statements. QueryID returns the id produced by a
// RETURNING clause.
type Execer interface {
	QueryID(ctx context.Context, query string, args ...any) (int64, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlTx struct{ *sql.Tx }

func (t sqlTx) QueryID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := t.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}

// ApplyDB upserts the fixture inside a single transaction.
func ApplyDB(ctx context.Context, db *sql.DB, f *Fixture) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := Apply(ctx, sqlTx{tx}, f); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Apply upserts every node keyed by (parent, name); existing leaves get their
// rates replaced. Nothing is deleted.
func Apply(ctx context.Context, tx Execer, f *Fixture) error {
	for _, sec := range f.Sections {
		sectionID, err := tx.QueryID(ctx, upsertSection, sec.Name)
		if err != nil {
			return fmt.Errorf("section %q: %w", sec.Name, err)
		}
		for _, sub := range sec.Subsections {
			subsectionID, err := tx.QueryID(ctx, upsertSubsection, sub.Name, sectionID)
			if err != nil {
				return fmt.Errorf("subsection %q: %w", sub.Name, err)
			}
			for _, cat := range sub.Categories {
				categoryID, err := tx.QueryID(ctx, upsertCategory, cat.Name, subsectionID)
				if err != nil {
					return fmt.Errorf("category %q: %w", cat.Name, err)
				}
				for _, leaf := range cat.Subcategories {
					if _, err := tx.ExecContext(ctx, upsertSubcategory,
						leaf.Name, categoryID, leaf.FilerRate.String(), leaf.NonFilerRate.String(), leaf.TaxNature); err != nil {
						return fmt.Errorf("subcategory %q: %w", leaf.Name, err)
					}
				}
			}
		}
	}
	return nil
}
