package taxonomy_test

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-tax/internal/db/gen"
)

// fakeTaxonomyQueries is an in-memory store. Rows are returned in insertion
// order so ordering in the service is what tests observe.
type fakeTaxonomyQueries struct {
	mu            sync.Mutex
	sections      []dbgen.TaxSection
	subsections   []dbgen.TaxSubsection
	categories    []dbgen.TaxCategory
	subcategories []dbgen.TaxSubcategory

	err   error
	calls int
}

func newFakeTaxonomyQueries() *fakeTaxonomyQueries {
	return &fakeTaxonomyQueries{
		sections: []dbgen.TaxSection{
			{ID: 1, Name: "Salary"},
			{ID: 2, Name: "Property"},
			{ID: 3, Name: "Dividend"},
		},
		subsections: []dbgen.TaxSubsection{
			{ID: 10, Name: "Private sector", SectionID: 1},
			{ID: 11, Name: "Government", SectionID: 1},
			{ID: 20, Name: "Rent", SectionID: 2},
		},
		categories: []dbgen.TaxCategory{
			{ID: 100, Name: "Monthly", SubsectionID: 10},
			{ID: 101, Name: "Bonus", SubsectionID: 10},
			{ID: 200, Name: "Commercial", SubsectionID: 20},
		},
		subcategories: []dbgen.TaxSubcategory{
			{ID: 1000, Name: "Services", CategoryID: 100, FilerRate: decimal.NewFromInt(15), NonFilerRate: decimal.NewFromInt(30), TaxNature: "Final"},
			{ID: 1001, Name: "Goods", CategoryID: 100, FilerRate: decimal.RequireFromString("4.5"), NonFilerRate: decimal.NewFromInt(9), TaxNature: "Adjustable"},
			{ID: 2000, Name: "Shops", CategoryID: 200, FilerRate: decimal.NewFromInt(10), NonFilerRate: decimal.NewFromInt(20), TaxNature: "Minimum"},
		},
	}
}

func (f *fakeTaxonomyQueries) enter() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeTaxonomyQueries) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeTaxonomyQueries) ListSections(ctx context.Context) ([]dbgen.TaxSection, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	return append([]dbgen.TaxSection(nil), f.sections...), nil
}

func (f *fakeTaxonomyQueries) ListSubsectionsBySection(ctx context.Context, sectionID int64) ([]dbgen.TaxSubsection, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	var out []dbgen.TaxSubsection
	for _, s := range f.subsections {
		if s.SectionID == sectionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTaxonomyQueries) ListCategoriesBySubsection(ctx context.Context, subsectionID int64) ([]dbgen.TaxCategory, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	var out []dbgen.TaxCategory
	for _, c := range f.categories {
		if c.SubsectionID == subsectionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeTaxonomyQueries) ListSubcategoriesByCategory(ctx context.Context, categoryID int64) ([]dbgen.TaxSubcategory, error) {
	if err := f.enter(); err != nil {
		return nil, err
	}
	var out []dbgen.TaxSubcategory
	for _, s := range f.subcategories {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeTaxonomyQueries) GetSubcategoryByID(ctx context.Context, id int64) (dbgen.TaxSubcategory, error) {
	if err := f.enter(); err != nil {
		return dbgen.TaxSubcategory{}, err
	}
	for _, s := range f.subcategories {
		if s.ID == id {
			return s, nil
		}
	}
	return dbgen.TaxSubcategory{}, pgx.ErrNoRows
}
