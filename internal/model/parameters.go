package model

import (
	"fmt"
	"math"
)

// UserParameters is a full snapshot of every tunable input of a household.
type UserParameters struct {
	Income         Income         `json:"income"`
	Expenses       Expenses       `json:"expenses"`
	Loan           Loan           `json:"loan"`
	Investments    Investments    `json:"investments"`
	Superannuation Superannuation `json:"superannuation"`
	Goal           RetirementGoal `json:"goal"`
	Horizon        Horizon        `json:"horizon"`
	Household      []Person       `json:"household"`
	CashBalance    float64        `json:"cash_balance"`
}

type Income struct {
	Amount     float64   `json:"amount"`
	Frequency  Frequency `json:"frequency"`
	TaxRate    float64   `json:"tax_rate"`
	GrowthRate float64   `json:"growth_rate"`
}

type ExpenseItem struct {
	Name       string    `json:"name"`
	Amount     float64   `json:"amount"`
	Frequency  Frequency `json:"frequency"`
	GrowthRate float64   `json:"growth_rate"`
}

type Expenses struct {
	Fixed ExpenseItem   `json:"fixed"`
	Items []ExpenseItem `json:"items"`
}

type Loan struct {
	Principal          float64   `json:"principal"`
	InterestRate       float64   `json:"interest_rate"`
	Payment            float64   `json:"payment"`
	Frequency          Frequency `json:"frequency"`
	OffsetEnabled      bool      `json:"offset_enabled"`
	OffsetBalance      float64   `json:"offset_balance"`
	InterestDeductible bool      `json:"interest_deductible"`
}

type Investments struct {
	Contribution float64             `json:"contribution"`
	Frequency    Frequency           `json:"frequency"`
	ReturnRate   float64             `json:"return_rate"`
	Balance      float64             `json:"balance"`
	Holdings     []InvestmentHolding `json:"holdings"`
}

// Superannuation contributions are a share of gross income paid on top of salary.
type Superannuation struct {
	ContributionRate float64 `json:"contribution_rate"`
	ReturnRate       float64 `json:"return_rate"`
	Balance          float64 `json:"balance"`
}

// RetirementGoal is the income to sustain and the minimum age to retire at.
type RetirementGoal struct {
	DesiredAnnualIncome float64 `json:"desired_annual_income"`
	TargetAge           int     `json:"target_age"`
}

// MaxYears bounds the simulation length.
const MaxYears = 150

type Horizon struct {
	CurrentAge     int       `json:"current_age"`
	Years          int       `json:"years"`
	StartDate      Date      `json:"start_date"`
	Period         Frequency `json:"period"`
	LifeExpectancy int       `json:"life_expectancy"`
}

// Periods returns the number of simulated periods after the opening state.
func (h Horizon) Periods() int {
	return h.Years * h.Period.PerYear()
}

type Person struct {
	Name          string         `json:"name"`
	CurrentAge    int            `json:"current_age"`
	RetirementAge int            `json:"retirement_age"`
	IncomeSources []IncomeSource `json:"income_sources"`
}

type IncomeSource struct {
	Name                  string    `json:"name"`
	Amount                float64   `json:"amount"`
	Frequency             Frequency `json:"frequency"`
	ContinuesInRetirement bool      `json:"continues_in_retirement"`
}

// Clone returns a deep copy so callers can never observe engine writes.
func (p UserParameters) Clone() UserParameters {
	out := p
	out.Expenses.Items = append([]ExpenseItem(nil), p.Expenses.Items...)
	if p.Investments.Holdings != nil {
		out.Investments.Holdings = make([]InvestmentHolding, len(p.Investments.Holdings))
		for i, h := range p.Investments.Holdings {
			out.Investments.Holdings[i] = h.clone()
		}
	}
	out.Household = clonePersons(p.Household)
	return out
}

func clonePersons(in []Person) []Person {
	if in == nil {
		return nil
	}
	out := make([]Person, len(in))
	for i, person := range in {
		out[i] = person
		out[i].IncomeSources = append([]IncomeSource(nil), person.IncomeSources...)
	}
	return out
}

// Validate checks that every amount and rate is finite and non-negative and
// that the horizon describes a runnable simulation.
func (p UserParameters) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"income.amount", p.Income.Amount},
		{"income.tax_rate", p.Income.TaxRate},
		{"income.growth_rate", p.Income.GrowthRate},
		{"expenses.fixed.amount", p.Expenses.Fixed.Amount},
		{"expenses.fixed.growth_rate", p.Expenses.Fixed.GrowthRate},
		{"loan.principal", p.Loan.Principal},
		{"loan.interest_rate", p.Loan.InterestRate},
		{"loan.payment", p.Loan.Payment},
		{"loan.offset_balance", p.Loan.OffsetBalance},
		{"investments.contribution", p.Investments.Contribution},
		{"investments.return_rate", p.Investments.ReturnRate},
		{"investments.balance", p.Investments.Balance},
		{"superannuation.contribution_rate", p.Superannuation.ContributionRate},
		{"superannuation.return_rate", p.Superannuation.ReturnRate},
		{"superannuation.balance", p.Superannuation.Balance},
		{"goal.desired_annual_income", p.Goal.DesiredAnnualIncome},
		{"cash_balance", p.CashBalance},
	}
	for _, c := range checks {
		if err := checkAmount(c.field, c.value); err != nil {
			return err
		}
	}
	for i, item := range p.Expenses.Items {
		prefix := fmt.Sprintf("expenses.items[%d]", i)
		if err := checkAmount(prefix+".amount", item.Amount); err != nil {
			return err
		}
		if err := checkAmount(prefix+".growth_rate", item.GrowthRate); err != nil {
			return err
		}
		if err := validateFrequency(prefix+".frequency", item.Frequency); err != nil {
			return err
		}
	}
	freqs := []struct {
		field string
		f     Frequency
	}{
		{"income.frequency", p.Income.Frequency},
		{"expenses.fixed.frequency", p.Expenses.Fixed.Frequency},
		{"loan.frequency", p.Loan.Frequency},
		{"investments.frequency", p.Investments.Frequency},
		{"horizon.period", p.Horizon.Period},
	}
	for _, c := range freqs {
		if err := validateFrequency(c.field, c.f); err != nil {
			return err
		}
	}
	for i, person := range p.Household {
		for j, src := range person.IncomeSources {
			field := fmt.Sprintf("household[%d].income_sources[%d]", i, j)
			if err := checkAmount(field+".amount", src.Amount); err != nil {
				return err
			}
			if err := validateFrequency(field+".frequency", src.Frequency); err != nil {
				return err
			}
		}
		if person.CurrentAge < 0 || person.RetirementAge < 0 {
			return &ValidationError{Code: CodeInvalidValue, Field: fmt.Sprintf("household[%d]", i), Message: "ages must be non-negative"}
		}
	}
	if p.Horizon.StartDate.IsZero() {
		return &ValidationError{Code: CodeInvalidDate, Field: "horizon.start_date", Message: "start date is required"}
	}
	if p.Horizon.Years <= 0 {
		return &ValidationError{Code: CodeInvalidValue, Field: "horizon.years", Message: "simulation length must be at least one year"}
	}
	if p.Horizon.Years > MaxYears {
		return &ValidationError{Code: CodeInvalidValue, Field: "horizon.years", Message: fmt.Sprintf("simulation length must not exceed %d years", MaxYears)}
	}
	if p.Horizon.CurrentAge < 0 || p.Goal.TargetAge < 0 {
		return &ValidationError{Code: CodeInvalidValue, Field: "horizon.current_age", Message: "ages must be non-negative"}
	}
	if p.Horizon.LifeExpectancy < 0 {
		return &ValidationError{Code: CodeInvalidValue, Field: "horizon.life_expectancy", Message: "must not be negative"}
	}
	if p.Horizon.LifeExpectancy > 0 && p.Horizon.LifeExpectancy <= p.Horizon.CurrentAge {
		return &ValidationError{Code: CodeInvalidValue, Field: "horizon.life_expectancy", Message: "must be greater than the current age"}
	}
	return validateHoldings(p.Investments.Holdings)
}

// validateHoldings applies the lot rules of a purchase to every stored lot.
func validateHoldings(holdings []InvestmentHolding) error {
	for i, h := range holdings {
		prefix := fmt.Sprintf("investments.holdings[%d]", i)
		if h.CurrentPrice != nil && h.CurrentPrice.IsNegative() {
			return &ValidationError{Code: CodeInvalidValue, Field: prefix + ".current_price", Message: "must not be negative"}
		}
		for j, lot := range h.Lots {
			field := fmt.Sprintf("%s.lots[%d]", prefix, j)
			switch {
			case !lot.Units.IsPositive():
				return &ValidationError{Code: CodeInvalidValue, Field: field + ".units", Message: "must be positive"}
			case !lot.PricePerUnit.IsPositive():
				return &ValidationError{Code: CodeInvalidValue, Field: field + ".price_per_unit", Message: "must be positive"}
			case lot.Fees.IsNegative():
				return &ValidationError{Code: CodeInvalidValue, Field: field + ".fees", Message: "must not be negative"}
			case lot.TotalCost.IsNegative():
				return &ValidationError{Code: CodeInvalidValue, Field: field + ".total_cost", Message: "must not be negative"}
			}
		}
	}
	return nil
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Code: CodeInvalidValue, Field: field, Message: "must be a finite number"}
	}
	if v < 0 {
		return &ValidationError{Code: CodeInvalidValue, Field: field, Message: "must not be negative"}
	}
	return nil
}
