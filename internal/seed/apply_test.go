package seed

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type statement struct {
	query string
	args  []any
}

// recordingExecer hands out increasing ids and records every statement.
type recordingExecer struct {
	nextID int64
	calls  []statement
	failOn string
}

func (r *recordingExecer) QueryID(_ context.Context, query string, args ...any) (int64, error) {
	r.calls = append(r.calls, statement{query: query, args: args})
	if r.failOn != "" && strings.Contains(query, r.failOn) {
		return 0, errors.New("conflict")
	}
	r.nextID++
	return r.nextID, nil
}

func (r *recordingExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.calls = append(r.calls, statement{query: query, args: args})
	return nil, nil
}

func twoBranchFixture() *Fixture {
	return &Fixture{Sections: []Section{
		{Name: "Salary", Subsections: []Subsection{{Name: "149", Categories: []Category{{
			Name: "Employees",
			Subcategories: []Subcategory{{
				Name: "Monthly", FilerRate: decimal.RequireFromString("5"), NonFilerRate: decimal.RequireFromString("10"), TaxNature: "Adjustable",
			}},
		}}}}},
		{Name: "Dividend", Subsections: []Subsection{{Name: "150", Categories: []Category{{
			Name: "Companies",
			Subcategories: []Subcategory{{
				Name: "Listed", FilerRate: decimal.RequireFromString("15"), NonFilerRate: decimal.RequireFromString("30.5"), TaxNature: "Final",
			}},
		}}}}},
	}}
}

func TestApplyEmptyFixtureTouchesNothing(t *testing.T) {
	exec := &recordingExecer{}
	require.NoError(t, Apply(context.Background(), exec, &Fixture{}))
	require.Empty(t, exec.calls)
}

func TestApplyPassesParentIDsDown(t *testing.T) {
	exec := &recordingExecer{}
	require.NoError(t, Apply(context.Background(), exec, twoBranchFixture()))

	want := []statement{
		{upsertSection, []any{"Salary"}},
		{upsertSubsection, []any{"149", int64(1)}},
		{upsertCategory, []any{"Employees", int64(2)}},
		{upsertSubcategory, []any{"Monthly", int64(3), "5", "10", "Adjustable"}},
		{upsertSection, []any{"Dividend"}},
		{upsertSubsection, []any{"150", int64(4)}},
		{upsertCategory, []any{"Companies", int64(5)}},
		{upsertSubcategory, []any{"Listed", int64(6), "15", "30.5", "Final"}},
	}
	require.Equal(t, want, exec.calls)
}

func TestApplyStopsOnFirstError(t *testing.T) {
	exec := &recordingExecer{failOn: "tax_categories"}
	err := Apply(context.Background(), exec, twoBranchFixture())
	require.ErrorContains(t, err, `category "Employees"`)
	require.Len(t, exec.calls, 3)
}

func TestUpsertStatementsAreIdempotent(t *testing.T) {
	for _, stmt := range []string{upsertSection, upsertSubsection, upsertCategory, upsertSubcategory} {
		require.True(t, strings.Contains(stmt, "ON CONFLICT"), stmt)
	}
}
