package model

// ComparisonSimulationResult diffs a run with transitions against the same
// configuration without them.
type ComparisonSimulationResult struct {
	WithTransitions     EnhancedSimulationResult `json:"with_transitions"`
	WithoutTransitions  EnhancedSimulationResult `json:"without_transitions"`
	Comparison          ScenarioComparison       `json:"comparison"`
	MilestoneComparison MilestoneComparison      `json:"milestone_comparison"`
}

type ScenarioComparison struct {
	FinalNetWorthDifference float64 `json:"final_net_worth_difference"`
	// RetirementDateDifference is in years; negative means the transitioned
	// scenario retires earlier. Nil when either run never retires.
	RetirementDateDifference *float64 `json:"retirement_date_difference,omitempty"`
	SustainabilityChanged    bool     `json:"sustainability_changed"`
}

type MilestoneComparison struct {
	CommonMilestones           []MilestonePair        `json:"common_milestones"`
	UniqueToWithTransitions    []Milestone            `json:"unique_to_with_transitions"`
	UniqueToWithoutTransitions []Milestone            `json:"unique_to_without_transitions"`
	ByType                     []MilestoneTypeSummary `json:"by_type"`
}

// MilestonePair is one milestone matched across both runs.
type MilestonePair struct {
	WithTransitions    Milestone `json:"with_transitions"`
	WithoutTransitions Milestone `json:"without_transitions"`
	// TimingDifferenceInDays is positive when the transitioned run reaches
	// the milestone earlier.
	TimingDifferenceInDays float64 `json:"timing_difference_in_days"`
	ImpactDifference       float64 `json:"impact_difference"`
}

type MilestoneEffect string

const (
	EffectAccelerates MilestoneEffect = "accelerates"
	EffectDelays      MilestoneEffect = "delays"
	EffectMixed       MilestoneEffect = "mixed"
	EffectNoChange    MilestoneEffect = "no_change"
)

type MilestoneTypeSummary struct {
	Type                MilestoneType   `json:"type"`
	Count               int             `json:"count"`
	AverageTimingInDays float64         `json:"average_timing_in_days"`
	Effect              MilestoneEffect `json:"effect"`
}
