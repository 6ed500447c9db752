package model

// ParameterTransition is a dated override of base parameters, modelling a
// life event such as a pay rise, a refinance or a new child.
type ParameterTransition struct {
	ID            string           `json:"id"`
	EffectiveDate Date             `json:"effective_date"`
	Label         string           `json:"label,omitempty"`
	Changes       ParameterChanges `json:"changes"`
}

// SimulationConfiguration is the full input of a run.
type SimulationConfiguration struct {
	BaseParameters UserParameters        `json:"base_parameters"`
	Transitions    []ParameterTransition `json:"transitions"`
}

// Clone deep-copies the configuration. Transition change sets are shared
// pointers and are treated as immutable once built.
func (c SimulationConfiguration) Clone() SimulationConfiguration {
	return SimulationConfiguration{
		BaseParameters: c.BaseParameters.Clone(),
		Transitions:    append([]ParameterTransition(nil), c.Transitions...),
	}
}

// WithoutTransitions returns a copy of c with an empty transition set.
func (c SimulationConfiguration) WithoutTransitions() SimulationConfiguration {
	return SimulationConfiguration{BaseParameters: c.BaseParameters.Clone()}
}

// TransitionPoint binds a transition to the state index at which it took effect.
type TransitionPoint struct {
	StateIndex     int                 `json:"state_index"`
	Date           Date                `json:"date"`
	Transition     ParameterTransition `json:"transition"`
	ChangesSummary []ParameterDiff     `json:"changes_summary"`
}

// ParameterDiff is one changed leaf of the active parameter set.
type ParameterDiff struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	From  any    `json:"from,omitempty"`
	Value any    `json:"value,omitempty"`
}
