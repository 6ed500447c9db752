// Package engine steps a household's finances forward one period at a time.
// A run is a pure function of its configuration: it never mutates its input,
// holds no state between calls and never logs.
package engine

import (
	"fmt"

	"projection-engine/internal/milestones"
	"projection-engine/internal/model"
	"projection-engine/internal/tax"
	"projection-engine/internal/transitions"
)

// Engine runs simulations against a tax resolver. It is safe for concurrent
// use as long as the resolver is.
type Engine struct {
	resolver tax.Resolver
}

type Option func(*Engine)

// WithResolver replaces the default bracket schedule.
func WithResolver(r tax.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{resolver: tax.DefaultSchedule()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Run simulates cfg with the default tax schedule.
func Run(cfg model.SimulationConfiguration) (model.SimulationResult, error) {
	return defaultEngine.Run(cfg)
}

// RunEnhanced simulates cfg with the default tax schedule and attaches
// transition points and milestones.
func RunEnhanced(cfg model.SimulationConfiguration) (model.EnhancedSimulationResult, error) {
	return defaultEngine.RunEnhanced(cfg)
}

func (e *Engine) Run(cfg model.SimulationConfiguration) (model.SimulationResult, error) {
	res, _, err := e.simulate(cfg)
	return res, err
}

func (e *Engine) RunEnhanced(cfg model.SimulationConfiguration) (model.EnhancedSimulationResult, error) {
	res, points, err := e.simulate(cfg)
	if err != nil {
		return model.EnhancedSimulationResult{}, err
	}
	if points == nil {
		points = []model.TransitionPoint{}
	}
	return model.EnhancedSimulationResult{
		SimulationResult: res,
		TransitionPoints: points,
		Milestones:       milestones.Detect(res, points, cfg.BaseParameters),
	}, nil
}

func (e *Engine) simulate(in model.SimulationConfiguration) (model.SimulationResult, []model.TransitionPoint, error) {
	if err := transitions.ValidateConfiguration(in); err != nil {
		return model.SimulationResult{}, nil, err
	}
	cfg := in.Clone()
	base := cfg.BaseParameters
	h := base.Horizon
	ppy := h.Period.PerYear()
	n := h.Periods()

	s := newStepper(base, e.resolver)
	states := make([]model.FinancialState, 0, n+1)
	opening := s.opening(h.StartDate)
	if err := checkState(0, opening); err != nil {
		return model.SimulationResult{}, nil, err
	}
	states = append(states, opening)

	tl := transitions.NewTimeline(cfg)
	var points []model.TransitionPoint
	var retirement *retirementPoint

	for i := 1; i <= n; i++ {
		date := h.Period.Step(h.StartDate, i)
		params, effects, err := tl.Advance(date)
		if err != nil {
			return model.SimulationResult{}, nil, fmt.Errorf("period %d: %w", i, err)
		}
		for _, eff := range effects {
			s.reset(eff.Transition.Changes)
			points = append(points, model.TransitionPoint{
				StateIndex:     i,
				Date:           date,
				Transition:     eff.Transition,
				ChangesSummary: eff.Changes,
			})
		}

		st, err := s.step(i, date, params)
		if err != nil {
			return model.SimulationResult{}, nil, err
		}
		if err := checkState(i, st); err != nil {
			return model.SimulationResult{}, nil, err
		}
		states = append(states, st)

		if retirement == nil {
			age := float64(h.CurrentAge) + float64(i)/float64(ppy)
			if canRetire(params, st, age) {
				retirement = &retirementPoint{date: date, age: age}
			}
		}
	}

	res := model.SimulationResult{States: states, Warnings: []model.CalculationMessage{}}
	if retirement != nil {
		d, age := retirement.date, retirement.age
		res.RetirementDate = &d
		res.RetirementAge = &age
	}
	res.IsSustainable, res.Warnings = assess(states, ppy, base, res.RetirementAge)
	for _, t := range tl.Pending() {
		res.Warnings = appendWarning(res.Warnings, model.WarnTransitionOutOfRange,
			fmt.Sprintf("Transition %q on %s falls after the last simulated period and was not applied", t.ID, t.EffectiveDate))
	}
	return res, points, nil
}

type retirementPoint struct {
	date model.Date
	age  float64
}
