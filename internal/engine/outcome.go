package engine

import (
	"fmt"
	"math"

	"projection-engine/internal/model"
)

// slowProgressYears is how far past the target age retirement may land
// before the run is flagged as slow.
const slowProgressYears = 5

// canRetire reports whether the household, at age and with the balances in
// st, can fund the desired income for the rest of its life.
func canRetire(p model.UserParameters, st model.FinancialState, age float64) bool {
	if age < float64(p.Goal.TargetAge) {
		return false
	}
	investable := math.Max(0, st.Investments+st.Superannuation+st.Cash+st.OffsetBalance-st.LoanBalance)
	need := math.Max(0, p.Goal.DesiredAnnualIncome-retirementIncome(p))
	if need == 0 {
		return true
	}
	return investable >= need*annuity(weightedReturn(p, st), fundedYears(p.Horizon, age))
}

// fundedYears is how long retirement income must last from age. Without a
// life expectancy ahead of age it runs to the end of the horizon, and it is
// at least one year.
func fundedYears(h model.Horizon, age float64) float64 {
	end := float64(h.LifeExpectancy)
	if end <= age {
		end = float64(h.CurrentAge + h.Years)
	}
	return math.Max(1, end-age)
}

// retirementIncome is the annual income that keeps flowing after retirement.
func retirementIncome(p model.UserParameters) float64 {
	var total float64
	for _, person := range p.Household {
		for _, src := range person.IncomeSources {
			if src.ContinuesInRetirement {
				total += src.Amount * float64(src.Frequency.PerYear())
			}
		}
	}
	return total
}

// weightedReturn blends the investment and superannuation returns by balance.
func weightedReturn(p model.UserParameters, st model.FinancialState) float64 {
	total := st.Investments + st.Superannuation
	if total <= 0 {
		return 0
	}
	return (st.Investments*p.Investments.ReturnRate + st.Superannuation*p.Superannuation.ReturnRate) / total
}

// annuity is the present value of paying 1 a year for years at rate r.
func annuity(r, years float64) float64 {
	if r == 0 {
		return years
	}
	return (1 - math.Pow(1+r, -years)) / r
}

// assess decides sustainability and collects the warnings of a finished run.
func assess(states []model.FinancialState, ppy int, base model.UserParameters, retirementAge *float64) (bool, []model.CalculationMessage) {
	msgs := []model.CalculationMessage{}
	sustainable := true
	first, final := states[0], states[len(states)-1]

	if final.LoanBalance > first.LoanBalance {
		sustainable = false
		msgs = appendWarning(msgs, model.WarnDebtGrowth,
			fmt.Sprintf("Loan balance grows from %.2f to %.2f over the horizon", first.LoanBalance, final.LoanBalance))
	}

	if tail := len(states) - ppy; tail >= 1 {
		shortfall := true
		for _, st := range states[tail:] {
			if st.CashFlow >= 0 {
				shortfall = false
				break
			}
		}
		if shortfall && final.Liquid() < states[tail-1].Liquid() {
			sustainable = false
			msgs = appendWarning(msgs, model.WarnCashShortfall,
				"Cash flow is negative in every period of the final year and liquid balances are falling")
		}
	}

	for _, st := range states {
		if st.Cash < 0 {
			msgs = appendWarning(msgs, model.WarnNegativeCash,
				fmt.Sprintf("Cash balance first goes negative on %s", st.Date))
			break
		}
	}

	switch {
	case retirementAge == nil:
		msgs = appendWarning(msgs, model.WarnGoalUnreached,
			fmt.Sprintf("Desired retirement income of %.2f is not reachable within the horizon", base.Goal.DesiredAnnualIncome))
	case *retirementAge > float64(base.Goal.TargetAge+slowProgressYears):
		msgs = appendWarning(msgs, model.WarnSlowProgress,
			fmt.Sprintf("Retirement is reachable at %.1f, well past the target age of %d", *retirementAge, base.Goal.TargetAge))
	}
	return sustainable, msgs
}

func appendWarning(msgs []model.CalculationMessage, code, message string) []model.CalculationMessage {
	return append(msgs, model.CalculationMessage{
		ID:      len(msgs),
		Level:   model.LevelWarning,
		Code:    code,
		Message: message,
	})
}
