package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"projection-engine/internal/model"
)

var start = model.NewDate(2025, 1, 1)

func f(v float64) *float64 { return &v }

func defaultConfig() model.SimulationConfiguration {
	return model.DefaultConfiguration(start)
}

func mustRun(t *testing.T, cfg model.SimulationConfiguration) model.EnhancedSimulationResult {
	t.Helper()
	res, err := RunEnhanced(cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return res
}

func hasWarning(res model.SimulationResult, code string) bool {
	for _, w := range res.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestRunIsDeterministic(t *testing.T) {
	a := mustRun(t, defaultConfig())
	b := mustRun(t, defaultConfig())
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two runs of the same configuration differ")
	}
}

func TestNetWorthInvariant(t *testing.T) {
	res := mustRun(t, defaultConfig())
	for i, s := range res.States {
		want := s.Cash + s.Investments + s.Superannuation + s.OffsetBalance - s.LoanBalance
		if math.Abs(s.NetWorth-want) > 1e-6 {
			t.Fatalf("state %d: net worth %v, want %v", i, s.NetWorth, want)
		}
	}
}

func TestStatesFollowFixedCadence(t *testing.T) {
	res := mustRun(t, defaultConfig())
	if len(res.States) != 40*12+1 {
		t.Fatalf("expected %d states, got %d", 40*12+1, len(res.States))
	}
	for i, s := range res.States {
		if want := model.Monthly.Step(start, i); !s.Date.Equal(want) {
			t.Fatalf("state %d dated %s, want %s", i, s.Date, want)
		}
		if i > 0 && !res.States[i-1].Date.Before(s.Date) {
			t.Fatalf("state %d is not after state %d", i, i-1)
		}
	}

	cfg := defaultConfig()
	cfg.BaseParameters.Horizon.Period = model.Weekly
	cfg.BaseParameters.Horizon.Years = 2
	weekly := mustRun(t, cfg)
	for i := 1; i < len(weekly.States); i++ {
		if gap := weekly.States[i-1].Date.DaysUntil(weekly.States[i].Date); gap != 7 {
			t.Fatalf("weekly gap at %d is %v days", i, gap)
		}
	}
}

func TestEmptyTransitionsMatchMissingTransitions(t *testing.T) {
	withEmpty := defaultConfig()
	withEmpty.Transitions = []model.ParameterTransition{}
	withNil := defaultConfig()
	withNil.Transitions = nil

	if !reflect.DeepEqual(mustRun(t, withEmpty), mustRun(t, withNil)) {
		t.Fatal("empty and missing transition sets produce different results")
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transitions = []model.ParameterTransition{{
		ID:            "raise",
		EffectiveDate: model.NewDate(2027, 1, 1),
		Changes:       model.ParameterChanges{Income: &model.IncomeChanges{Amount: f(9500)}},
	}}
	before := cfg.Clone()
	mustRun(t, cfg)
	if !reflect.DeepEqual(before, cfg) {
		t.Fatal("configuration was modified by the run")
	}
}

func TestLoanPayoffScenario(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseParameters.Loan = model.Loan{
		Principal:    300000,
		InterestRate: 0.055,
		Payment:      2000,
		Frequency:    model.Monthly,
	}
	res := mustRun(t, cfg)

	payoff := -1
	for i, s := range res.States {
		if s.LoanBalance == 0 {
			payoff = i
			break
		}
	}
	if payoff < 0 {
		t.Fatal("loan never reaches zero")
	}

	var found []model.Milestone
	for _, m := range res.Milestones {
		if m.Type == model.MilestoneLoanPayoff {
			found = append(found, m)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly one loan_payoff milestone, got %d", len(found))
	}
	if found[0].StateIndex != payoff {
		t.Fatalf("loan_payoff at state %d, loan first zero at %d", found[0].StateIndex, payoff)
	}
	if !found[0].Date.Equal(res.States[payoff].Date) {
		t.Fatalf("loan_payoff dated %s, want %s", found[0].Date, res.States[payoff].Date)
	}
	if !res.IsSustainable {
		t.Fatalf("expected sustainable run, warnings: %+v", res.Warnings)
	}
}

func TestOffsetReducesInterest(t *testing.T) {
	res := mustRun(t, defaultConfig())
	s := res.States[1]
	if s.InterestSaved <= 0 {
		t.Fatalf("expected interest saved with offset, got %v", s.InterestSaved)
	}
	want := 10000 * 0.055 / 12
	if math.Abs(s.InterestSaved-want) > 1e-9 {
		t.Fatalf("interest saved %v, want %v", s.InterestSaved, want)
	}
	if s.DeductibleInterest != 0 {
		t.Fatalf("interest is not deductible, got %v", s.DeductibleInterest)
	}
}

func TestFlatTaxOverride(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseParameters.Income.TaxRate = 0.3
	res := mustRun(t, cfg)

	if res.States[0].TaxPaid != 0 {
		t.Fatalf("opening state carries flows: %+v", res.States[0])
	}
	if got := res.States[1].TaxPaid; math.Abs(got-8500*0.3) > 1e-9 {
		t.Fatalf("tax paid %v, want %v", got, 8500*0.3)
	}
}

func TestTransitionResetsBalanceAndRecordsPoint(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transitions = []model.ParameterTransition{{
		ID:            "windfall",
		Label:         "Inheritance",
		EffectiveDate: model.NewDate(2026, 1, 1),
		Changes:       model.ParameterChanges{CashBalance: f(100000)},
	}}
	res := mustRun(t, cfg)

	if got := res.States[11].Cash; got != 5000 {
		t.Fatalf("cash before the transition %v, want 5000", got)
	}
	if got := res.States[12].Cash; got != 100000 {
		t.Fatalf("cash after the transition %v, want 100000", got)
	}
	if len(res.TransitionPoints) != 1 {
		t.Fatalf("expected 1 transition point, got %d", len(res.TransitionPoints))
	}
	p := res.TransitionPoints[0]
	if p.StateIndex != 12 || p.Transition.ID != "windfall" {
		t.Fatalf("unexpected transition point %+v", p)
	}
	if len(p.ChangesSummary) != 1 || p.ChangesSummary[0].Path != "/cash_balance" {
		t.Fatalf("unexpected changes summary %+v", p.ChangesSummary)
	}
}

func TestTransitionBeyondHorizonIsWarned(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseParameters.Horizon.Years = 1
	plain := mustRun(t, cfg)

	cfg.Transitions = []model.ParameterTransition{{
		ID:            "later",
		EffectiveDate: model.NewDate(2030, 1, 1),
		Changes:       model.ParameterChanges{Income: &model.IncomeChanges{Amount: f(1)}},
	}}
	res := mustRun(t, cfg)

	if !hasWarning(res.SimulationResult, model.WarnTransitionOutOfRange) {
		t.Fatalf("expected %s warning, got %+v", model.WarnTransitionOutOfRange, res.Warnings)
	}
	if !reflect.DeepEqual(plain.States, res.States) {
		t.Fatal("an unreached transition changed the states")
	}
}

func TestRetirementDetected(t *testing.T) {
	cfg := defaultConfig()
	p := &cfg.BaseParameters
	p.Horizon.CurrentAge = 60
	p.Goal.TargetAge = 60
	p.Superannuation.Balance = 5000000

	res := mustRun(t, cfg)
	if res.RetirementDate == nil || res.RetirementAge == nil {
		t.Fatal("expected a retirement date")
	}
	if !res.RetirementDate.Equal(res.States[1].Date) {
		t.Fatalf("retired on %s, want %s", res.RetirementDate, res.States[1].Date)
	}
	if want := 60 + 1.0/12; math.Abs(*res.RetirementAge-want) > 1e-9 {
		t.Fatalf("retirement age %v, want %v", *res.RetirementAge, want)
	}
}

func TestUnreachableGoalIsWarned(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseParameters.Goal.DesiredAnnualIncome = 1e9
	res := mustRun(t, cfg)
	if res.RetirementDate != nil {
		t.Fatal("did not expect a retirement date")
	}
	if !hasWarning(res.SimulationResult, model.WarnGoalUnreached) {
		t.Fatalf("expected %s warning", model.WarnGoalUnreached)
	}
}

func TestDebtGrowthIsUnsustainable(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseParameters.Loan.Payment = 0
	res := mustRun(t, cfg)
	if res.IsSustainable {
		t.Fatal("expected an unsustainable run")
	}
	if !hasWarning(res.SimulationResult, model.WarnDebtGrowth) {
		t.Fatalf("expected %s warning", model.WarnDebtGrowth)
	}
}

func TestNonFiniteValueAbortsRun(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseParameters.Income.Amount = math.MaxFloat64

	_, err := Run(cfg)
	var calcErr *model.CalculationError
	if !errors.As(err, &calcErr) {
		t.Fatalf("expected CalculationError, got %v", err)
	}
	if calcErr.Period != 1 || calcErr.Field != "gross_income" {
		t.Fatalf("unexpected error location %+v", calcErr)
	}
}

func TestInvalidConfigurationIsRejected(t *testing.T) {
	cfg := defaultConfig()
	cfg.Transitions = []model.ParameterTransition{{
		ID:            "too-early",
		EffectiveDate: start,
		Changes:       model.ParameterChanges{CashBalance: f(1)},
	}}
	_, err := Run(cfg)
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) || vErr.Code != model.CodeInvalidDate {
		t.Fatalf("expected INVALID_DATE, got %v", err)
	}
}

func TestHugeHorizonIsRejected(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseParameters.Horizon.Years = 1 << 61

	_, err := Run(cfg)
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) || vErr.Code != model.CodeInvalidValue || vErr.Field != "horizon.years" {
		t.Fatalf("expected INVALID_VALUE on horizon.years, got %v", err)
	}
}

func TestNoRetirementWithoutAssetsWhenLifeExpectancyUnset(t *testing.T) {
	cfg := defaultConfig()
	p := &cfg.BaseParameters
	p.Income.Amount = 0
	p.Expenses = model.Expenses{}
	p.Loan = model.Loan{}
	p.Investments = model.Investments{}
	p.Superannuation = model.Superannuation{}
	p.Household = nil
	p.CashBalance = 0
	p.Horizon.CurrentAge = 60
	p.Horizon.Years = 10
	p.Horizon.LifeExpectancy = 0
	p.Goal = model.RetirementGoal{DesiredAnnualIncome: 1e6, TargetAge: 60}

	res := mustRun(t, cfg)
	if res.RetirementDate != nil {
		t.Fatalf("retired on %s with no assets", res.RetirementDate)
	}
	if !hasWarning(res.SimulationResult, model.WarnGoalUnreached) {
		t.Fatalf("expected %s warning", model.WarnGoalUnreached)
	}
}

func TestFundedYearsFallsBackToHorizonEnd(t *testing.T) {
	h := model.Horizon{CurrentAge: 60, Years: 10, LifeExpectancy: 0}
	if got := fundedYears(h, 62); got != 8 {
		t.Fatalf("funded years %v, want 8", got)
	}
	h.LifeExpectancy = 90
	if got := fundedYears(h, 62); got != 28 {
		t.Fatalf("funded years %v, want 28", got)
	}
	if got := fundedYears(h, 95); got != 1 {
		t.Fatalf("funded years past every end %v, want 1", got)
	}
}
