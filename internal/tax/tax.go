// Package tax resolves income tax from progressive marginal-bracket tables.
package tax

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

// Assessment is the tax payable on one year of gross income.
type Assessment struct {
	TaxPayable    float64 `json:"tax_payable"`
	EffectiveRate float64 `json:"effective_rate"`
}

// Resolver turns an annual gross income into tax payable.
type Resolver interface {
	Resolve(grossIncome float64, taxYear int) (Assessment, error)
}

// Bracket taxes every dollar above Threshold at Rate, up to the next
// bracket's threshold.
type Bracket struct {
	Threshold float64 `toml:"threshold" json:"threshold"`
	Rate      float64 `toml:"rate" json:"rate"`
}

// Table is the bracket table for one tax year plus a flat levy on the whole
// taxable income.
type Table struct {
	Year     int       `toml:"year" json:"year"`
	Brackets []Bracket `toml:"brackets" json:"brackets"`
	Levy     float64   `toml:"levy" json:"levy"`
}

// Validate checks that thresholds ascend and rates are sane.
func (t Table) Validate() error {
	if len(t.Brackets) == 0 {
		return fmt.Errorf("tax table %d: no brackets", t.Year)
	}
	for i, b := range t.Brackets {
		if b.Rate < 0 || b.Rate > 1 || math.IsNaN(b.Rate) {
			return fmt.Errorf("tax table %d: bracket %d rate %v out of range", t.Year, i, b.Rate)
		}
		if b.Threshold < 0 || math.IsNaN(b.Threshold) {
			return fmt.Errorf("tax table %d: bracket %d threshold %v invalid", t.Year, i, b.Threshold)
		}
		if i > 0 && b.Threshold <= t.Brackets[i-1].Threshold {
			return fmt.Errorf("tax table %d: thresholds must ascend", t.Year)
		}
	}
	if t.Levy < 0 || t.Levy > 1 {
		return fmt.Errorf("tax table %d: levy %v out of range", t.Year, t.Levy)
	}
	return nil
}

// Tax computes the marginal tax plus levy on income.
func (t Table) Tax(income float64) Assessment {
	if income <= 0 {
		return Assessment{}
	}
	var payable float64
	for i, b := range t.Brackets {
		if income <= b.Threshold {
			break
		}
		upper := income
		if i+1 < len(t.Brackets) && t.Brackets[i+1].Threshold < income {
			upper = t.Brackets[i+1].Threshold
		}
		payable += (upper - b.Threshold) * b.Rate
	}
	payable += income * t.Levy
	return Assessment{TaxPayable: payable, EffectiveRate: payable / income}
}

// Schedule holds tables for several years and resolves each request with
// the latest table not after the requested year.
type Schedule struct {
	tables []Table
}

// NewSchedule validates and orders tables by year.
func NewSchedule(tables ...Table) (*Schedule, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("tax schedule needs at least one table")
	}
	sorted := append([]Table(nil), tables...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	for i, t := range sorted {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if i > 0 && t.Year == sorted[i-1].Year {
			return nil, fmt.Errorf("tax schedule: duplicate table for %d", t.Year)
		}
	}
	return &Schedule{tables: sorted}, nil
}

// TableFor returns the table in force for year. Years before the first
// table use the first table.
func (s *Schedule) TableFor(year int) Table {
	chosen := s.tables[0]
	for _, t := range s.tables {
		if t.Year > year {
			break
		}
		chosen = t
	}
	return chosen
}

func (s *Schedule) Resolve(grossIncome float64, taxYear int) (Assessment, error) {
	if math.IsNaN(grossIncome) || math.IsInf(grossIncome, 0) {
		return Assessment{}, fmt.Errorf("gross income %v is not finite", grossIncome)
	}
	return s.TableFor(taxYear).Tax(grossIncome), nil
}

// FlatRate taxes every dollar at the same rate.
type FlatRate float64

func (r FlatRate) Resolve(grossIncome float64, _ int) (Assessment, error) {
	if grossIncome <= 0 {
		return Assessment{}, nil
	}
	return Assessment{TaxPayable: grossIncome * float64(r), EffectiveRate: float64(r)}, nil
}

type scheduleFile struct {
	Tables []Table `toml:"table"`
}

// LoadSchedule reads [[table]] blocks from a TOML file.
func LoadSchedule(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tax tables: %w", err)
	}
	return ParseSchedule(data)
}

// ParseSchedule parses [[table]] blocks from TOML bytes.
func ParseSchedule(data []byte) (*Schedule, error) {
	var f scheduleFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tax tables: %w", err)
	}
	return NewSchedule(f.Tables...)
}

// DefaultTable is the Australian resident table for 2024-25 with the 2%
// Medicare levy.
func DefaultTable() Table {
	return Table{
		Year: 2024,
		Brackets: []Bracket{
			{Threshold: 0, Rate: 0},
			{Threshold: 18200, Rate: 0.16},
			{Threshold: 45000, Rate: 0.30},
			{Threshold: 135000, Rate: 0.37},
			{Threshold: 190000, Rate: 0.45},
		},
		Levy: 0.02,
	}
}

// DefaultSchedule wraps DefaultTable.
func DefaultSchedule() *Schedule {
	return &Schedule{tables: []Table{DefaultTable()}}
}

// FixedYear resolves every request against one tax year.
type FixedYear struct {
	Resolver
	Year int
}

func (f FixedYear) Resolve(grossIncome float64, _ int) (Assessment, error) {
	return f.Resolver.Resolve(grossIncome, f.Year)
}
