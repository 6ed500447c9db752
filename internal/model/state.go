package model

// FinancialState is the household position at the close of one period.
type FinancialState struct {
	Date               Date    `json:"date"`
	Cash               float64 `json:"cash"`
	Investments        float64 `json:"investments"`
	Superannuation     float64 `json:"superannuation"`
	LoanBalance        float64 `json:"loan_balance"`
	OffsetBalance      float64 `json:"offset_balance"`
	NetWorth           float64 `json:"net_worth"`
	CashFlow           float64 `json:"cash_flow"`
	TaxPaid            float64 `json:"tax_paid"`
	Expenses           float64 `json:"expenses"`
	InterestSaved      float64 `json:"interest_saved"`
	DeductibleInterest float64 `json:"deductible_interest"`
}

// ComputeNetWorth returns cash + investments + super + offset − loan.
func (s FinancialState) ComputeNetWorth() float64 {
	return s.Cash + s.Investments + s.Superannuation + s.OffsetBalance - s.LoanBalance
}

// Liquid is the balance available to absorb a cash shortfall.
func (s FinancialState) Liquid() float64 {
	return s.Cash + s.OffsetBalance + s.Investments
}

// SimulationResult is the output of one run.
type SimulationResult struct {
	States         []FinancialState     `json:"states"`
	RetirementDate *Date                `json:"retirement_date,omitempty"`
	RetirementAge  *float64             `json:"retirement_age,omitempty"`
	IsSustainable  bool                 `json:"is_sustainable"`
	Warnings       []CalculationMessage `json:"warnings"`
}

// Final returns the last state of the run.
func (r SimulationResult) Final() FinancialState {
	return r.States[len(r.States)-1]
}

// IndexOf returns the index of the state dated d, or -1.
func (r SimulationResult) IndexOf(d Date) int {
	for i, s := range r.States {
		if s.Date.Equal(d) {
			return i
		}
	}
	return -1
}

// EnhancedSimulationResult adds the transition points and milestones of a run.
type EnhancedSimulationResult struct {
	SimulationResult
	TransitionPoints []TransitionPoint `json:"transition_points"`
	Milestones       []Milestone       `json:"milestones"`
}
