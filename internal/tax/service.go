package tax

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-tax/internal/common"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/taxonomy"
)

type subcategoryLookup interface {
	GetSubcategory(ctx context.Context, id string) (taxonomy.Subcategory, error)
}

// Request carries the raw compute inputs. GrossAmount is a decimal literal.
type Request struct {
	SubcategoryID string `json:"subCategoryId" validate:"required"`
	FilerStatus   string `json:"filerStatus" validate:"required,oneof=filer non-filer"`
	GrossAmount   string `json:"grossAmount" validate:"required"`
}

// Service validates compute requests and resolves their subcategory.
type Service struct {
	lookup   subcategoryLookup
	validate *validator.Validate
	logger   zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Taxonomy subcategoryLookup
	Logger   zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Taxonomy == nil {
		return nil, errors.New("tax: taxonomy lookup is required")
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Service{lookup: cfg.Taxonomy, validate: v, logger: cfg.Logger}, nil
}

// ComputeTax validates req, resolves its subcategory and applies the matching
// rate. Every validation failure is reported before the store is consulted.
func (s *Service) ComputeTax(ctx context.Context, req Request) (Breakdown, error) {
	req = Request{
		SubcategoryID: strings.TrimSpace(req.SubcategoryID),
		FilerStatus:   strings.TrimSpace(req.FilerStatus),
		GrossAmount:   strings.TrimSpace(req.GrossAmount),
	}
	logger := s.loggerFor(ctx).With().
		Str("subcategory_id", req.SubcategoryID).
		Str("filer_status", req.FilerStatus).
		Logger()

	status, gross, err := s.parse(req)
	if err != nil {
		obs.ObserveTaxComputation(statusLabel(req.FilerStatus), "invalid")
		logger.Warn().Err(err).Msg("tax request rejected")
		return Breakdown{}, err
	}

	sub, err := s.lookup.GetSubcategory(ctx, req.SubcategoryID)
	if err != nil {
		result := "error"
		if errors.Is(err, taxonomy.ErrNotFound) {
			result = "not_found"
		}
		obs.ObserveTaxComputation(status.String(), result)
		return Breakdown{}, err
	}

	out := Compute(gross, status, sub)
	obs.ObserveTaxComputation(status.String(), "ok")
	logger.Info().
		Str("gross_amount", out.GrossAmount.String()).
		Str("tax_rate", out.TaxRate.String()).
		Str("tax_amount", out.TaxAmount.String()).
		Msg("tax computed")
	return out, nil
}

func (s *Service) parse(req Request) (FilerStatus, decimal.Decimal, error) {
	if err := s.validate.Struct(req); err != nil {
		return 0, decimal.Decimal{}, translate(err)
	}
	status, err := ParseFilerStatus(req.FilerStatus)
	if err != nil {
		return 0, decimal.Decimal{}, invalid("filerStatus", "filerStatus must be 'filer' or 'non-filer'")
	}
	gross, err := parseAmount(req.GrossAmount)
	if err != nil {
		return 0, decimal.Decimal{}, err
	}
	return status, gross, nil
}

// Amount bounds. The exponent is checked before any comparison because
// decimal rescales to the smaller exponent and an unchecked 1e100000000
// would expand to a hundred million digits.
const (
	maxAmountLen       = 64
	maxAmountExponent  = 15
	maxAmountFracDigit = 20
)

var maxGrossAmount = decimal.New(1, maxAmountExponent)

func parseAmount(raw string) (decimal.Decimal, error) {
	if len(raw) > maxAmountLen {
		return decimal.Decimal{}, invalid("grossAmount", "grossAmount is out of range")
	}
	gross, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, invalid("grossAmount", "grossAmount must be a number")
	}
	if gross.IsZero() {
		return decimal.Zero, nil
	}
	if gross.IsNegative() {
		return decimal.Decimal{}, invalid("grossAmount", "grossAmount must not be negative")
	}
	exp := gross.Exponent()
	if exp > maxAmountExponent || gross.GreaterThan(maxGrossAmount) {
		return decimal.Decimal{}, invalid("grossAmount", "grossAmount must not exceed 1e15")
	}
	if exp < -maxAmountFracDigit {
		return decimal.Decimal{}, invalid("grossAmount", "grossAmount has too many decimal places")
	}
	return gross, nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalid("", "invalid tax request")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return invalid(fe.Field(), fe.Field()+" is required")
	case "oneof":
		return invalid(fe.Field(), fe.Field()+" must be 'filer' or 'non-filer'")
	default:
		return invalid(fe.Field(), fe.Field()+" is invalid")
	}
}

func invalid(field, message string) error {
	return common.BadRequest(field, message, taxonomy.ErrInvalidArgument)
}

func statusLabel(raw string) string {
	if status, err := ParseFilerStatus(raw); err == nil {
		return status.String()
	}
	return "unknown"
}

func (s *Service) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}
