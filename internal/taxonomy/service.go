// Package taxonomy serves the read-only Section > Subsection > Category >
// Subcategory tree.
package taxonomy

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-tax/internal/db"
	dbgen "github.com/noah-isme/backend-tax/internal/db/gen"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/resilience"
)

// Levels label metrics, logs and cache keys.
const (
	LevelSections      = "sections"
	LevelSubsections   = "subsections"
	LevelCategories    = "categories"
	LevelSubcategories = "subcategories"
	LevelSubcategory   = "subcategory"
)

type queryProvider interface {
	ListSections(ctx context.Context) ([]dbgen.TaxSection, error)
	ListSubsectionsBySection(ctx context.Context, sectionID int64) ([]dbgen.TaxSubsection, error)
	ListCategoriesBySubsection(ctx context.Context, subsectionID int64) ([]dbgen.TaxCategory, error)
	ListSubcategoriesByCategory(ctx context.Context, categoryID int64) ([]dbgen.TaxSubcategory, error)
	GetSubcategoryByID(ctx context.Context, id int64) (dbgen.TaxSubcategory, error)
}

// Node is a non-leaf entry of the tree.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subcategory is a leaf carrying the percentage rates for both filer statuses.
type Subcategory struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	FilerRate    decimal.Decimal `json:"filerRate"`
	NonFilerRate decimal.Decimal `json:"nonFilerRate"`
	TaxNature    string          `json:"taxNature"`
}

// MarshalJSON emits the rates as JSON numbers.
func (s Subcategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID           string      `json:"id"`
		Name         string      `json:"name"`
		FilerRate    json.Number `json:"filerRate"`
		NonFilerRate json.Number `json:"nonFilerRate"`
		TaxNature    string      `json:"taxNature"`
	}{
		ID:           s.ID,
		Name:         s.Name,
		FilerRate:    json.Number(s.FilerRate.String()),
		NonFilerRate: json.Number(s.NonFilerRate.String()),
		TaxNature:    s.TaxNature,
	})
}

// Service answers taxonomy queries through a guarded store and an optional cache.
type Service struct {
	queries queryProvider
	cache   *Cache
	guard   resilience.Guard
	logger  zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries queryProvider
	Cache   *Cache
	Guard   resilience.Guard
	Logger  zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("taxonomy: queries are required")
	}
	guard := cfg.Guard
	if guard.Target == "" {
		guard.Target = "taxonomy_store"
	}
	if guard.Transient == nil {
		guard.Transient = db.IsTransient
	}
	if guard.Expected == nil {
		guard.Expected = db.IsNoRows
	}
	return &Service{
		queries: cfg.Queries,
		cache:   cfg.Cache,
		guard:   guard,
		logger:  cfg.Logger,
	}, nil
}

// ListSections returns every Section ordered by name.
func (s *Service) ListSections(ctx context.Context) ([]Node, error) {
	return list(ctx, s, LevelSections, 0, func(ctx context.Context) ([]dbgen.TaxSection, error) {
		return s.queries.ListSections(ctx)
	}, func(row dbgen.TaxSection) Node {
		return Node{ID: formatID(row.ID), Name: row.Name}
	})
}

// ListSubsections returns the Subsections of sectionID ordered by name. An id
// that matches no Section yields an empty slice.
func (s *Service) ListSubsections(ctx context.Context, sectionID string) ([]Node, error) {
	id, ok, err := parseID("sectionId", sectionID)
	if err != nil || !ok {
		return emptyOr[Node](err)
	}
	return list(ctx, s, LevelSubsections, id, func(ctx context.Context) ([]dbgen.TaxSubsection, error) {
		return s.queries.ListSubsectionsBySection(ctx, id)
	}, func(row dbgen.TaxSubsection) Node {
		return Node{ID: formatID(row.ID), Name: row.Name}
	})
}

// ListCategories returns the Categories of subsectionID ordered by name.
func (s *Service) ListCategories(ctx context.Context, subsectionID string) ([]Node, error) {
	id, ok, err := parseID("subSectionId", subsectionID)
	if err != nil || !ok {
		return emptyOr[Node](err)
	}
	return list(ctx, s, LevelCategories, id, func(ctx context.Context) ([]dbgen.TaxCategory, error) {
		return s.queries.ListCategoriesBySubsection(ctx, id)
	}, func(row dbgen.TaxCategory) Node {
		return Node{ID: formatID(row.ID), Name: row.Name}
	})
}

// ListSubcategories returns the Subcategories of categoryID, with rates, ordered by name.
func (s *Service) ListSubcategories(ctx context.Context, categoryID string) ([]Subcategory, error) {
	id, ok, err := parseID("categoryId", categoryID)
	if err != nil || !ok {
		return emptyOr[Subcategory](err)
	}
	return list(ctx, s, LevelSubcategories, id, func(ctx context.Context) ([]dbgen.TaxSubcategory, error) {
		return s.queries.ListSubcategoriesByCategory(ctx, id)
	}, toSubcategory)
}

// GetSubcategory resolves a single leaf by id.
func (s *Service) GetSubcategory(ctx context.Context, subcategoryID string) (Subcategory, error) {
	id, ok, err := parseID("subCategoryId", subcategoryID)
	if err != nil {
		obs.ObserveTaxonomyQuery(LevelSubcategory, "invalid")
		return Subcategory{}, err
	}
	logger := s.loggerFor(ctx).With().Str("level", LevelSubcategory).Str("id", subcategoryID).Logger()
	if !ok {
		obs.ObserveTaxonomyQuery(LevelSubcategory, "not_found")
		logger.Warn().Msg("subcategory not found")
		return Subcategory{}, notFound("subcategory not found")
	}

	key := cacheKey(LevelSubcategory, id)
	var cached Subcategory
	if s.fromCache(ctx, LevelSubcategory, key, &cached) {
		obs.ObserveTaxonomyQuery(LevelSubcategory, "ok")
		return cached, nil
	}

	var row dbgen.TaxSubcategory
	err = s.guard.Do(ctx, func(ctx context.Context) error {
		var qerr error
		row, qerr = s.queries.GetSubcategoryByID(ctx, id)
		return qerr
	})
	switch {
	case err == nil:
	case db.IsNoRows(err):
		obs.ObserveTaxonomyQuery(LevelSubcategory, "not_found")
		logger.Warn().Msg("subcategory not found")
		return Subcategory{}, notFound("subcategory not found")
	default:
		obs.ObserveTaxonomyQuery(LevelSubcategory, "error")
		logger.Error().Err(err).Msg("subcategory lookup failed")
		return Subcategory{}, storeUnavailable(err)
	}

	sub := toSubcategory(row)
	s.toCache(ctx, key, sub)
	obs.ObserveTaxonomyQuery(LevelSubcategory, "ok")
	logger.Debug().Msg("subcategory resolved")
	return sub, nil
}

// list runs a guarded listing query, converts rows and orders them by name.
func list[R any, T interface{ Node | Subcategory }](ctx context.Context, s *Service, level string, parentID int64,
	query func(context.Context) ([]R, error), convert func(R) T) ([]T, error) {
	logger := s.loggerFor(ctx).With().Str("level", level).Logger()
	key := cacheKey(level, parentID)

	var out []T
	if s.fromCache(ctx, level, key, &out) {
		obs.ObserveTaxonomyQuery(level, "ok")
		return nonNil(out), nil
	}

	var rows []R
	err := s.guard.Do(ctx, func(ctx context.Context) error {
		var qerr error
		rows, qerr = query(ctx)
		return qerr
	})
	if err != nil {
		obs.ObserveTaxonomyQuery(level, "error")
		logger.Error().Err(err).Int64("parent_id", parentID).Msg("taxonomy listing failed")
		return nil, storeUnavailable(err)
	}

	out = make([]T, 0, len(rows))
	for _, row := range rows {
		out = append(out, convert(row))
	}
	slices.SortStableFunc(out, func(a, b T) int { return strings.Compare(nameOf(a), nameOf(b)) })

	s.toCache(ctx, key, out)
	obs.ObserveTaxonomyQuery(level, "ok")
	logger.Debug().Int64("parent_id", parentID).Int("count", len(out)).Msg("taxonomy listed")
	return out, nil
}

func nameOf[T interface{ Node | Subcategory }](v T) string {
	switch n := any(v).(type) {
	case Node:
		return n.Name
	case Subcategory:
		return n.Name
	}
	return ""
}

func (s *Service) fromCache(ctx context.Context, level, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.loggerFor(ctx).Debug().Err(err).Str("key", key).Msg("taxonomy cache read failed")
		return false
	}
	obs.ObserveTaxonomyCache(level, hit)
	return hit
}

func (s *Service) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, v); err != nil {
		s.loggerFor(ctx).Debug().Err(err).Str("key", key).Msg("taxonomy cache write failed")
	}
}

func (s *Service) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

// parseID rejects blank identifiers. A non-blank value that is not a positive
// integer cannot match any row and reports ok=false.
func parseID(field, raw string) (int64, bool, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false, invalidArgument(field, field+" is required")
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}

func emptyOr[T any](err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	return []T{}, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func toSubcategory(row dbgen.TaxSubcategory) Subcategory {
	return Subcategory{
		ID:           formatID(row.ID),
		Name:         row.Name,
		FilerRate:    row.FilerRate,
		NonFilerRate: row.NonFilerRate,
		TaxNature:    row.TaxNature,
	}
}
