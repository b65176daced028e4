// Package tax derives withholding deductions from taxonomy rates.
package tax

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-tax/internal/taxonomy"
)

// FilerStatus selects which of a subcategory's two rates applies.
type FilerStatus int

const (
	Filer FilerStatus = iota + 1
	NonFiler
)

// ParseFilerStatus accepts exactly "filer" or "non-filer".
func ParseFilerStatus(raw string) (FilerStatus, error) {
	switch raw {
	case "filer":
		return Filer, nil
	case "non-filer":
		return NonFiler, nil
	default:
		return 0, fmt.Errorf("unknown filer status %q", raw)
	}
}

// String returns the wire token.
func (f FilerStatus) String() string {
	switch f {
	case Filer:
		return "filer"
	case NonFiler:
		return "non-filer"
	default:
		return "unknown"
	}
}

// Rate picks the percentage rate for f.
func (f FilerStatus) Rate(sub taxonomy.Subcategory) decimal.Decimal {
	if f == Filer {
		return sub.FilerRate
	}
	return sub.NonFilerRate
}

// Breakdown is the result of a computation. Amounts are exact; no rounding is applied.
type Breakdown struct {
	GrossAmount decimal.Decimal
	TaxRate     decimal.Decimal
	TaxAmount   decimal.Decimal
	NetAmount   decimal.Decimal
	TaxNature   string
}

// MarshalJSON emits the amounts as JSON numbers.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		GrossAmount json.Number `json:"grossAmount"`
		TaxRate     json.Number `json:"taxRate"`
		TaxAmount   json.Number `json:"taxAmount"`
		NetAmount   json.Number `json:"netAmount"`
		TaxNature   string      `json:"taxNature"`
	}{
		GrossAmount: json.Number(b.GrossAmount.String()),
		TaxRate:     json.Number(b.TaxRate.String()),
		TaxAmount:   json.Number(b.TaxAmount.String()),
		NetAmount:   json.Number(b.NetAmount.String()),
		TaxNature:   b.TaxNature,
	})
}

// Compute applies the rate for status to gross. TaxAmount + NetAmount == GrossAmount
// holds exactly.
func Compute(gross decimal.Decimal, status FilerStatus, sub taxonomy.Subcategory) Breakdown {
	rate := status.Rate(sub)
	taxAmount := gross.Mul(rate).Shift(-2)
	return Breakdown{
		GrossAmount: gross,
		TaxRate:     rate,
		TaxAmount:   taxAmount,
		NetAmount:   gross.Sub(taxAmount),
		TaxNature:   sub.TaxNature,
	}
}
