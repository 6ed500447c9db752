// Package compare runs a configuration with and without its transitions and
// diffs the two outcomes.
package compare

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"projection-engine/internal/model"
)

// MatchThreshold is the minimum normalised title similarity for two
// milestones of the same type to be treated as the same event.
const MatchThreshold = 0.8

const daysPerYear = 365.25

// Runner produces an enhanced result for one configuration.
type Runner interface {
	RunEnhanced(cfg model.SimulationConfiguration) (model.EnhancedSimulationResult, error)
}

// Compare runs cfg as given and with an empty transition set, concurrently,
// and diffs the results.
func Compare(r Runner, cfg model.SimulationConfiguration) (model.ComparisonSimulationResult, error) {
	withCfg := cfg.Clone()
	withoutCfg := cfg.WithoutTransitions()

	var (
		wg                  sync.WaitGroup
		with, without       model.EnhancedSimulationResult
		withErr, withoutErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		with, withErr = r.RunEnhanced(withCfg)
	}()
	go func() {
		defer wg.Done()
		without, withoutErr = r.RunEnhanced(withoutCfg)
	}()
	wg.Wait()

	if withErr != nil {
		return model.ComparisonSimulationResult{}, fmt.Errorf("run with transitions: %w", withErr)
	}
	if withoutErr != nil {
		return model.ComparisonSimulationResult{}, fmt.Errorf("run without transitions: %w", withoutErr)
	}

	return model.ComparisonSimulationResult{
		WithTransitions:     with,
		WithoutTransitions:  without,
		Comparison:          Scenarios(with.SimulationResult, without.SimulationResult),
		MilestoneComparison: Milestones(with.Milestones, without.Milestones),
	}, nil
}

// Scenarios diffs the headline outcomes of two runs.
func Scenarios(with, without model.SimulationResult) model.ScenarioComparison {
	c := model.ScenarioComparison{
		FinalNetWorthDifference: with.Final().NetWorth - without.Final().NetWorth,
		SustainabilityChanged:   with.IsSustainable != without.IsSustainable,
	}
	if with.RetirementDate != nil && without.RetirementDate != nil {
		years := without.RetirementDate.DaysUntil(*with.RetirementDate) / daysPerYear
		c.RetirementDateDifference = &years
	}
	return c
}

// Milestones pairs milestones of the same type with similar titles, nearest
// date first, and summarises the timing shift per type.
func Milestones(with, without []model.Milestone) model.MilestoneComparison {
	out := model.MilestoneComparison{
		CommonMilestones:           []model.MilestonePair{},
		UniqueToWithTransitions:    []model.Milestone{},
		UniqueToWithoutTransitions: []model.Milestone{},
		ByType:                     []model.MilestoneTypeSummary{},
	}

	used := make([]bool, len(without))
	for _, w := range with {
		best := -1
		bestGap := math.Inf(1)
		for j, o := range without {
			if used[j] || o.Type != w.Type || Similarity(w.Title, o.Title) < MatchThreshold {
				continue
			}
			if gap := math.Abs(w.Date.DaysUntil(o.Date)); gap < bestGap {
				best, bestGap = j, gap
			}
		}
		if best < 0 {
			out.UniqueToWithTransitions = append(out.UniqueToWithTransitions, w)
			continue
		}
		used[best] = true
		o := without[best]
		out.CommonMilestones = append(out.CommonMilestones, model.MilestonePair{
			WithTransitions:        w,
			WithoutTransitions:     o,
			TimingDifferenceInDays: w.Date.DaysUntil(o.Date),
			ImpactDifference:       netWorth(w) - netWorth(o),
		})
	}
	for j, o := range without {
		if !used[j] {
			out.UniqueToWithoutTransitions = append(out.UniqueToWithoutTransitions, o)
		}
	}

	for _, typ := range model.MilestoneTypes {
		var timings []float64
		for _, p := range out.CommonMilestones {
			if p.WithTransitions.Type == typ {
				timings = append(timings, p.TimingDifferenceInDays)
			}
		}
		if len(timings) == 0 {
			continue
		}
		var sum float64
		for _, d := range timings {
			sum += d
		}
		out.ByType = append(out.ByType, model.MilestoneTypeSummary{
			Type:                typ,
			Count:               len(timings),
			AverageTimingInDays: sum / float64(len(timings)),
			Effect:              effectOf(timings),
		})
	}
	return out
}

func effectOf(timings []float64) model.MilestoneEffect {
	var earlier, later int
	for _, d := range timings {
		switch {
		case d > 0:
			earlier++
		case d < 0:
			later++
		}
	}
	switch {
	case earlier == 0 && later == 0:
		return model.EffectNoChange
	case later == 0:
		return model.EffectAccelerates
	case earlier == 0:
		return model.EffectDelays
	default:
		return model.EffectMixed
	}
}

// Similarity is 1 minus the Levenshtein distance of the normalised titles
// over the longer title's length.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func netWorth(m model.Milestone) float64 {
	if m.FinancialImpact == nil {
		return 0
	}
	return m.FinancialImpact.NetWorth
}
