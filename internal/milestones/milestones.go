// Package milestones finds significant events in a completed run.
package milestones

import (
	"fmt"
	"sort"
	"strings"

	"projection-engine/internal/model"
)

// Detect scans consecutive states of res for milestones and adds one per
// transition point. The result is ordered by date; milestones on the same
// date follow rule priority.
func Detect(res model.SimulationResult, points []model.TransitionPoint, base model.UserParameters) []model.Milestone {
	out := []model.Milestone{}
	states := res.States

	offsetEnabled := offsetSchedule(base, points)
	offsetCovered := false
	for i := 1; i < len(states); i++ {
		prev, cur := states[i-1], states[i]

		if prev.LoanBalance > 0 && cur.LoanBalance == 0 {
			out = append(out, model.Milestone{
				Type:            model.MilestoneLoanPayoff,
				Date:            cur.Date,
				StateIndex:      i,
				Title:           "Loan paid off",
				Description:     fmt.Sprintf("The final %.2f of the loan is repaid", prev.LoanBalance),
				FinancialImpact: impact(cur, prev.LoanBalance),
			})
		}

		if !offsetCovered && offsetEnabled(i) && cur.LoanBalance > 0 && cur.OffsetBalance >= cur.LoanBalance {
			offsetCovered = true
			out = append(out, model.Milestone{
				Type:            model.MilestoneOffsetCompletion,
				Date:            cur.Date,
				StateIndex:      i,
				Title:           "Offset covers loan",
				Description:     fmt.Sprintf("Offset balance of %.2f now covers the %.2f loan; no interest is charged", cur.OffsetBalance, cur.LoanBalance),
				FinancialImpact: impact(cur, cur.OffsetBalance),
			})
		}
	}

	if res.RetirementDate != nil {
		if i := res.IndexOf(*res.RetirementDate); i >= 0 {
			st := states[i]
			desc := "Investable assets can fund the desired retirement income"
			if res.RetirementAge != nil {
				desc = fmt.Sprintf("At age %.1f investable assets can fund %.2f a year", *res.RetirementAge, base.Goal.DesiredAnnualIncome)
			}
			out = append(out, model.Milestone{
				Type:            model.MilestoneRetirementEligibility,
				Date:            st.Date,
				StateIndex:      i,
				Title:           "Retirement goal reachable",
				Description:     desc,
				FinancialImpact: impact(st, base.Goal.DesiredAnnualIncome),
			})
		}
	}

	for _, p := range points {
		m := model.Milestone{
			Type:        model.MilestoneParameterTransition,
			Date:        p.Date,
			StateIndex:  p.StateIndex,
			Title:       transitionTitle(p.Transition),
			Description: "Changed: " + strings.Join(p.Transition.Changes.Keys(), ", "),
		}
		if p.StateIndex >= 0 && p.StateIndex < len(states) {
			m.FinancialImpact = impact(states[p.StateIndex], 0)
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Type.Priority() < out[j].Type.Priority()
	})
	return out
}

// offsetSchedule reports whether the offset account is enabled at a state
// index, following loan.offset_enabled through the transition points.
func offsetSchedule(base model.UserParameters, points []model.TransitionPoint) func(int) bool {
	ordered := append([]model.TransitionPoint(nil), points...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StateIndex < ordered[j].StateIndex })

	enabled := base.Loan.OffsetEnabled
	next := 0
	return func(state int) bool {
		for ; next < len(ordered) && ordered[next].StateIndex <= state; next++ {
			if l := ordered[next].Transition.Changes.Loan; l != nil && l.OffsetEnabled != nil {
				enabled = *l.OffsetEnabled
			}
		}
		return enabled
	}
}

func transitionTitle(t model.ParameterTransition) string {
	if t.Label != "" {
		return t.Label
	}
	return "Transition " + t.ID
}

func impact(st model.FinancialState, amount float64) *model.FinancialImpact {
	return &model.FinancialImpact{NetWorth: st.NetWorth, CashFlow: st.CashFlow, Amount: amount}
}
