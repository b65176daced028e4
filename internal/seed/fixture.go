// Package seed loads the taxonomy fixture used to provision reference data.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Fixture is the whole tree as authored in YAML.
type Fixture struct {
	Sections []Section `yaml:"sections"`
}

// Section is a root node.
type Section struct {
	Name        string       `yaml:"name"`
	Subsections []Subsection `yaml:"subsections"`
}

// Subsection groups categories.
type Subsection struct {
	Name       string     `yaml:"name"`
	Categories []Category `yaml:"categories"`
}

// Category groups leaf subcategories.
type Category struct {
	Name          string        `yaml:"name"`
	Subcategories []Subcategory `yaml:"subcategories"`
}

// Subcategory carries percentage rates. Rates are decoded from YAML scalars
// as text so no float rounding occurs.
type Subcategory struct {
	Name         string          `yaml:"name"`
	FilerRate    decimal.Decimal `yaml:"filer_rate"`
	NonFilerRate decimal.Decimal `yaml:"non_filer_rate"`
	TaxNature    string          `yaml:"tax_nature"`
}

// UnmarshalYAML decodes the rate scalars with decimal.NewFromString.
func (s *Subcategory) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name         string `yaml:"name"`
		FilerRate    string `yaml:"filer_rate"`
		NonFilerRate string `yaml:"non_filer_rate"`
		TaxNature    string `yaml:"tax_nature"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	filer, err := parseRate(raw.FilerRate)
	if err != nil {
		return fmt.Errorf("line %d: filer_rate: %w", node.Line, err)
	}
	nonFiler, err := parseRate(raw.NonFilerRate)
	if err != nil {
		return fmt.Errorf("line %d: non_filer_rate: %w", node.Line, err)
	}
	*s = Subcategory{Name: raw.Name, FilerRate: filer, NonFilerRate: nonFiler, TaxNature: raw.TaxNature}
	return nil
}

func parseRate(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, errors.New("is required")
	}
	return decimal.NewFromString(raw)
}

// LoadFile reads and validates a fixture from path.
func LoadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a fixture.
func Load(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate enforces non-blank unique names per parent and non-negative rates
// no greater than 100.
func (f *Fixture) Validate() error {
	hundred := decimal.NewFromInt(100)
	var errs []error
	sections := map[string]bool{}
	for _, sec := range f.Sections {
		errs = append(errs, checkName(sections, "section", sec.Name))
		subs := map[string]bool{}
		for _, sub := range sec.Subsections {
			errs = append(errs, checkName(subs, "subsection of "+sec.Name, sub.Name))
			cats := map[string]bool{}
			for _, cat := range sub.Categories {
				errs = append(errs, checkName(cats, "category of "+sub.Name, cat.Name))
				leaves := map[string]bool{}
				for _, leaf := range cat.Subcategories {
					errs = append(errs, checkName(leaves, "subcategory of "+cat.Name, leaf.Name))
					for label, rate := range map[string]decimal.Decimal{"filer_rate": leaf.FilerRate, "non_filer_rate": leaf.NonFilerRate} {
						if rate.IsNegative() || rate.GreaterThan(hundred) {
							errs = append(errs, fmt.Errorf("subcategory %q: %s %s out of range", leaf.Name, label, rate))
						}
					}
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Counts reports the number of nodes per level.
func (f *Fixture) Counts() (sections, subsections, categories, subcategories int) {
	for _, sec := range f.Sections {
		sections++
		for _, sub := range sec.Subsections {
			subsections++
			for _, cat := range sub.Categories {
				categories++
				subcategories += len(cat.Subcategories)
			}
		}
	}
	return
}

func checkName(seen map[string]bool, kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s: name is required", kind)
	}
	if seen[name] {
		return fmt.Errorf("%s: duplicate name %q", kind, name)
	}
	seen[name] = true
	return nil
}
