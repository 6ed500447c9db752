package transitions

import (
	"projection-engine/internal/jsonpatch"
	"projection-engine/internal/model"
)

// Timeline resolves the parameters in force on any date. The stepper walks it
// forward with Advance; At answers arbitrary lookups.
type Timeline struct {
	base        model.UserParameters
	transitions []model.ParameterTransition
	current     model.UserParameters
	next        int
}

// Effect is one transition taking effect during Advance.
type Effect struct {
	Transition model.ParameterTransition
	Changes    []model.ParameterDiff
}

func NewTimeline(cfg model.SimulationConfiguration) *Timeline {
	base := cfg.BaseParameters.Clone()
	return &Timeline{
		base:        base,
		transitions: Ordered(cfg.Transitions),
		current:     base.Clone(),
	}
}

// At returns the base parameters with every transition effective on or
// before d folded in, in schedule order.
func (tl *Timeline) At(d model.Date) model.UserParameters {
	p := tl.base.Clone()
	for _, t := range tl.transitions {
		if t.EffectiveDate.After(d) {
			break
		}
		p = t.Changes.ApplyTo(p)
	}
	return p
}

// Advance moves the cursor to d and returns the parameters now in force with
// the transitions that took effect since the previous call. The returned
// parameters must be treated as read-only.
func (tl *Timeline) Advance(d model.Date) (model.UserParameters, []Effect, error) {
	var effects []Effect
	for tl.next < len(tl.transitions) && !tl.transitions[tl.next].EffectiveDate.After(d) {
		t := tl.transitions[tl.next]
		after := t.Changes.ApplyTo(tl.current)
		diff, err := jsonpatch.Parameters(tl.current, after)
		if err != nil {
			return tl.current, nil, err
		}
		effects = append(effects, Effect{Transition: t, Changes: diff})
		tl.current = after
		tl.next++
	}
	return tl.current, effects, nil
}

// Pending lists the transitions Advance has not reached yet.
func (tl *Timeline) Pending() []model.ParameterTransition {
	return tl.transitions[tl.next:]
}
