package engine

import (
	"fmt"
	"math"

	"projection-engine/internal/lots"
	"projection-engine/internal/model"
	"projection-engine/internal/tax"
)

// stepper carries the running balances and growth factors between periods.
type stepper struct {
	resolver tax.Resolver
	period   model.Frequency
	ppy      float64

	cash, investments, super, loan, offset float64

	// Growth factors restart at 1 whenever a transition replaces the amount
	// they grow.
	incomeGrowth float64
	fixedGrowth  float64
	itemGrowth   []float64
}

func newStepper(p model.UserParameters, r tax.Resolver) *stepper {
	return &stepper{
		resolver:     r,
		period:       p.Horizon.Period,
		ppy:          float64(p.Horizon.Period.PerYear()),
		cash:         p.CashBalance,
		investments:  p.Investments.Balance + lots.MarketValue(p.Investments.Holdings),
		super:        p.Superannuation.Balance,
		loan:         p.Loan.Principal,
		offset:       p.Loan.OffsetBalance,
		incomeGrowth: 1,
		fixedGrowth:  1,
		itemGrowth:   ones(len(p.Expenses.Items)),
	}
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func (s *stepper) opening(date model.Date) model.FinancialState {
	return s.state(date, flows{})
}

// reset applies the balance overrides and growth restarts carried by a
// transition that takes effect this period.
func (s *stepper) reset(c model.ParameterChanges) {
	b := c.Balances()
	if b.Loan != nil {
		s.loan = *b.Loan
	}
	if b.Offset != nil {
		s.offset = *b.Offset
	}
	if b.Investments != nil {
		s.investments = *b.Investments
	}
	if b.Superannuation != nil {
		s.super = *b.Superannuation
	}
	if b.Cash != nil {
		s.cash = *b.Cash
	}
	if c.Income != nil && c.Income.Amount != nil {
		s.incomeGrowth = 1
	}
	if c.Expenses != nil {
		if c.Expenses.Fixed != nil {
			s.fixedGrowth = 1
		}
		if c.Expenses.Items != nil {
			s.itemGrowth = ones(len(*c.Expenses.Items))
		}
	}
}

type flows struct {
	cashFlow           float64
	tax                float64
	expenses           float64
	interestSaved      float64
	deductibleInterest float64
}

// step advances one period under params and returns the closing state.
func (s *stepper) step(i int, date model.Date, p model.UserParameters) (model.FinancialState, error) {
	var f flows

	gross := s.period.Convert(p.Income.Amount, p.Income.Frequency)*s.incomeGrowth + s.householdIncome(i, p)
	if err := finite(i, "gross_income", gross); err != nil {
		return model.FinancialState{}, err
	}

	// Loan interest is charged on the balance net of the offset account.
	rate := p.Loan.InterestRate / s.ppy
	fullInterest := s.loan * rate
	charged := fullInterest
	if p.Loan.OffsetEnabled {
		charged = math.Max(0, s.loan-s.offset) * rate
	}
	f.interestSaved = fullInterest - charged
	if p.Loan.InterestDeductible {
		f.deductibleInterest = charged
	}
	due := s.loan + charged
	payment := 0.0
	if due > 0 {
		payment = math.Min(s.period.Convert(p.Loan.Payment, p.Loan.Frequency), due)
	}

	taxable := math.Max(0, (gross-f.deductibleInterest)*s.ppy)
	assessment, err := s.annualTax(p, taxable, date.Year())
	if err != nil {
		return model.FinancialState{}, fmt.Errorf("period %d: resolving tax: %w", i, err)
	}
	f.tax = assessment / s.ppy
	net := gross - f.tax

	f.expenses = s.period.Convert(p.Expenses.Fixed.Amount, p.Expenses.Fixed.Frequency) * s.fixedGrowth
	for k, item := range p.Expenses.Items {
		f.expenses += s.period.Convert(item.Amount, item.Frequency) * s.itemFactor(k)
	}

	s.loan = due - payment

	contribution := s.period.Convert(p.Investments.Contribution, p.Investments.Frequency)
	s.investments = s.investments*(1+periodRate(p.Investments.ReturnRate, s.ppy)) + contribution
	s.super = s.super*(1+periodRate(p.Superannuation.ReturnRate, s.ppy)) + gross*p.Superannuation.ContributionRate

	f.cashFlow = net - f.expenses - payment - contribution
	s.deposit(f.cashFlow, p.Loan.OffsetEnabled)

	s.grow(p)
	return s.state(date, f), nil
}

// householdIncome sums the income sources of people who have not retired yet,
// plus those that continue in retirement.
func (s *stepper) householdIncome(i int, p model.UserParameters) float64 {
	elapsed := float64(i-1) / s.ppy
	var total float64
	for _, person := range p.Household {
		retired := person.RetirementAge > 0 && float64(person.CurrentAge)+elapsed >= float64(person.RetirementAge)
		for _, src := range person.IncomeSources {
			if retired && !src.ContinuesInRetirement {
				continue
			}
			total += s.period.Convert(src.Amount, src.Frequency)
		}
	}
	return total
}

func (s *stepper) annualTax(p model.UserParameters, taxable float64, year int) (float64, error) {
	var r tax.Resolver = s.resolver
	if p.Income.TaxRate > 0 {
		r = tax.FlatRate(p.Income.TaxRate)
	}
	a, err := r.Resolve(taxable, year)
	if err != nil {
		return 0, err
	}
	return a.TaxPayable, nil
}

// deposit routes cash flow into the offset account when it is enabled. A
// shortfall drains the offset before cash.
func (s *stepper) deposit(cf float64, offsetEnabled bool) {
	if !offsetEnabled {
		s.cash += cf
		return
	}
	if cf >= 0 {
		s.offset += cf
		return
	}
	draw := math.Min(-cf, s.offset)
	s.offset -= draw
	s.cash -= -cf - draw
}

func (s *stepper) itemFactor(k int) float64 {
	if k < len(s.itemGrowth) {
		return s.itemGrowth[k]
	}
	return 1
}

func (s *stepper) grow(p model.UserParameters) {
	s.incomeGrowth *= 1 + periodRate(p.Income.GrowthRate, s.ppy)
	s.fixedGrowth *= 1 + periodRate(p.Expenses.Fixed.GrowthRate, s.ppy)
	for len(s.itemGrowth) < len(p.Expenses.Items) {
		s.itemGrowth = append(s.itemGrowth, 1)
	}
	for k, item := range p.Expenses.Items {
		s.itemGrowth[k] *= 1 + periodRate(item.GrowthRate, s.ppy)
	}
}

func (s *stepper) state(date model.Date, f flows) model.FinancialState {
	st := model.FinancialState{
		Date:               date,
		Cash:               s.cash,
		Investments:        s.investments,
		Superannuation:     s.super,
		LoanBalance:        s.loan,
		OffsetBalance:      s.offset,
		CashFlow:           f.cashFlow,
		TaxPaid:            f.tax,
		Expenses:           f.expenses,
		InterestSaved:      f.interestSaved,
		DeductibleInterest: f.deductibleInterest,
	}
	st.NetWorth = st.ComputeNetWorth()
	return st
}

// periodRate converts an annual rate into the equivalent compounding rate
// for one period.
func periodRate(annual, ppy float64) float64 {
	return math.Pow(1+annual, 1/ppy) - 1
}

func checkState(i int, st model.FinancialState) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"cash", st.Cash},
		{"investments", st.Investments},
		{"superannuation", st.Superannuation},
		{"loan_balance", st.LoanBalance},
		{"offset_balance", st.OffsetBalance},
		{"net_worth", st.NetWorth},
		{"cash_flow", st.CashFlow},
		{"tax_paid", st.TaxPaid},
		{"expenses", st.Expenses},
		{"interest_saved", st.InterestSaved},
		{"deductible_interest", st.DeductibleInterest},
	}
	for _, f := range fields {
		if err := finite(i, f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func finite(i int, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &model.CalculationError{Period: i, Field: field, Value: v}
	}
	return nil
}
