package taxonomy_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tax/internal/common"
	dbgen "github.com/noah-isme/backend-tax/internal/db/gen"
	"github.com/noah-isme/backend-tax/internal/resilience"
	"github.com/noah-isme/backend-tax/internal/taxonomy"
)

func newService(t *testing.T, queries *fakeTaxonomyQueries, cache *taxonomy.Cache) *taxonomy.Service {
	t.Helper()
	svc, err := taxonomy.NewService(taxonomy.ServiceConfig{
		Queries: queries,
		Cache:   cache,
		Guard:   resilience.Guard{Policy: resilience.Policy{Attempts: 2, Base: time.Millisecond}},
	})
	require.NoError(t, err)
	return svc
}

func names(nodes []taxonomy.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestNewServiceRequiresQueries(t *testing.T) {
	_, err := taxonomy.NewService(taxonomy.ServiceConfig{})
	require.Error(t, err)
}

func TestListSectionsOrderedByName(t *testing.T) {
	svc := newService(t, newFakeTaxonomyQueries(), nil)

	sections, err := svc.ListSections(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Dividend", "Property", "Salary"}, names(sections))
	require.Equal(t, "3", sections[0].ID)
}

func TestListSectionsOrderIsCodepoint(t *testing.T) {
	queries := newFakeTaxonomyQueries()
	queries.sections = []dbgen.TaxSection{{ID: 1, Name: "b"}, {ID: 2, Name: "B"}, {ID: 3, Name: "a"}}
	svc := newService(t, queries, nil)

	sections, err := svc.ListSections(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"B", "a", "b"}, names(sections))
}

func TestListChildrenOfParent(t *testing.T) {
	svc := newService(t, newFakeTaxonomyQueries(), nil)
	ctx := context.Background()

	subsections, err := svc.ListSubsections(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, []string{"Government", "Private sector"}, names(subsections))

	categories, err := svc.ListCategories(ctx, " 10 ")
	require.NoError(t, err)
	require.Equal(t, []string{"Bonus", "Monthly"}, names(categories))

	subs, err := svc.ListSubcategories(ctx, "100")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, "Goods", subs[0].Name)
	require.Equal(t, "4.5", subs[0].FilerRate.String())
	require.Equal(t, "Services", subs[1].Name)
	require.Equal(t, "Final", subs[1].TaxNature)
}

func TestListUnknownParentReturnsEmpty(t *testing.T) {
	queries := newFakeTaxonomyQueries()
	svc := newService(t, queries, nil)
	ctx := context.Background()

	subsections, err := svc.ListSubsections(ctx, "999")
	require.NoError(t, err)
	require.NotNil(t, subsections)
	require.Empty(t, subsections)

	// ids that cannot be integers match nothing and never reach the store
	before := queries.callCount()
	categories, err := svc.ListCategories(ctx, "not-a-number")
	require.NoError(t, err)
	require.Empty(t, categories)
	subs, err := svc.ListSubcategories(ctx, "-4")
	require.NoError(t, err)
	require.Empty(t, subs)
	require.Equal(t, before, queries.callCount())
}

func TestListBlankParentIsInvalidArgument(t *testing.T) {
	svc := newService(t, newFakeTaxonomyQueries(), nil)
	ctx := context.Background()

	for name, call := range map[string]func() error{
		"subsections":   func() error { _, err := svc.ListSubsections(ctx, ""); return err },
		"categories":    func() error { _, err := svc.ListCategories(ctx, "  "); return err },
		"subcategories": func() error { _, err := svc.ListSubcategories(ctx, ""); return err },
		"subcategory":   func() error { _, err := svc.GetSubcategory(ctx, ""); return err },
	} {
		err := call()
		require.ErrorIs(t, err, taxonomy.ErrInvalidArgument, name)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr, name)
		require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus, name)
	}
}

func TestGetSubcategory(t *testing.T) {
	svc := newService(t, newFakeTaxonomyQueries(), nil)
	ctx := context.Background()

	sub, err := svc.GetSubcategory(ctx, "1000")
	require.NoError(t, err)
	require.Equal(t, "Services", sub.Name)
	require.True(t, sub.NonFilerRate.Equal(decimal.NewFromInt(30)))

	for _, id := range []string{"424242", "abc"} {
		_, err = svc.GetSubcategory(ctx, id)
		require.ErrorIs(t, err, taxonomy.ErrNotFound, id)
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
	}
}

func TestStoreFailureIsStoreUnavailable(t *testing.T) {
	queries := newFakeTaxonomyQueries()
	queries.err = errors.New("connection refused")
	svc := newService(t, queries, nil)

	_, err := svc.ListSections(context.Background())
	require.ErrorIs(t, err, taxonomy.ErrStoreUnavailable)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus)
	require.Equal(t, common.CodeStoreUnavailable, appErr.Code)

	_, err = svc.GetSubcategory(context.Background(), "1000")
	require.ErrorIs(t, err, taxonomy.ErrStoreUnavailable)
}

func TestTransientStoreFailureIsRetried(t *testing.T) {
	queries := newFakeTaxonomyQueries()
	queries.err = fmt.Errorf("dial: %w", context.DeadlineExceeded)
	svc := newService(t, queries, nil)

	_, err := svc.ListSections(context.Background())
	require.ErrorIs(t, err, taxonomy.ErrStoreUnavailable)
	require.Equal(t, 2, queries.callCount())
}

func TestQueriesAreIdempotent(t *testing.T) {
	svc := newService(t, newFakeTaxonomyQueries(), nil)
	ctx := context.Background()

	first, err := svc.ListSubcategories(ctx, "100")
	require.NoError(t, err)
	second, err := svc.ListSubcategories(ctx, "100")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCacheServesRepeatedListings(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	queries := newFakeTaxonomyQueries()
	cache := taxonomy.NewCache(client, time.Minute)
	svc := newService(t, queries, cache)
	ctx := context.Background()

	first, err := svc.ListSubcategories(ctx, "100")
	require.NoError(t, err)
	calls := queries.callCount()
	require.True(t, mr.Exists("taxonomy:subcategories:100"))

	second, err := svc.ListSubcategories(ctx, "100")
	require.NoError(t, err)
	require.Equal(t, calls, queries.callCount())
	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].ID, second[i].ID)
		require.True(t, first[i].FilerRate.Equal(second[i].FilerRate))
	}

	sub, err := svc.GetSubcategory(ctx, "1000")
	require.NoError(t, err)
	cached, err := svc.GetSubcategory(ctx, "1000")
	require.NoError(t, err)
	require.True(t, sub.FilerRate.Equal(cached.FilerRate))

	removed, err := cache.Flush(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.False(t, mr.Exists("taxonomy:subcategories:100"))
}

func TestCacheFailureFallsBackToStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	svc := newService(t, newFakeTaxonomyQueries(), taxonomy.NewCache(client, time.Minute))
	sections, err := svc.ListSections(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 3)
}

func TestNewCacheDisabled(t *testing.T) {
	require.Nil(t, taxonomy.NewCache(nil, time.Minute))
	var cache *taxonomy.Cache
	hit, err := cache.GetJSON(context.Background(), "k", &struct{}{})
	require.NoError(t, err)
	require.False(t, hit)
}
