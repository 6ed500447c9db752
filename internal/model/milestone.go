package model

// MilestoneType names a detection rule. The declaration order is the
// tie-break priority for milestones sharing a date.
type MilestoneType string

const (
	MilestoneLoanPayoff            MilestoneType = "loan_payoff"
	MilestoneOffsetCompletion      MilestoneType = "offset_completion"
	MilestoneRetirementEligibility MilestoneType = "retirement_eligibility"
	MilestoneParameterTransition   MilestoneType = "parameter_transition"
)

// Priority orders milestone types on the same date.
func (t MilestoneType) Priority() int {
	switch t {
	case MilestoneLoanPayoff:
		return 0
	case MilestoneOffsetCompletion:
		return 1
	case MilestoneRetirementEligibility:
		return 2
	case MilestoneParameterTransition:
		return 3
	}
	return 4
}

// MilestoneTypes lists every type in priority order.
var MilestoneTypes = []MilestoneType{
	MilestoneLoanPayoff,
	MilestoneOffsetCompletion,
	MilestoneRetirementEligibility,
	MilestoneParameterTransition,
}

type Milestone struct {
	Type            MilestoneType    `json:"type"`
	Date            Date             `json:"date"`
	StateIndex      int              `json:"state_index"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	FinancialImpact *FinancialImpact `json:"financial_impact,omitempty"`
}

// FinancialImpact is the financial picture attached to a milestone.
type FinancialImpact struct {
	NetWorth float64 `json:"net_worth"`
	CashFlow float64 `json:"cash_flow"`
	Amount   float64 `json:"amount"`
}
