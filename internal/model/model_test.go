package model

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validParameters() UserParameters {
	return DefaultParameters(NewDate(2025, 1, 1))
}

func requireInvalid(t *testing.T, err error, field string) {
	t.Helper()
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "want ValidationError, got %v", err)
	require.Equal(t, CodeInvalidValue, vErr.Code)
	require.Equal(t, field, vErr.Field)
}

func TestDefaultParametersAreValid(t *testing.T) {
	require.NoError(t, validParameters().Validate())
}

func TestValidateBoundsHorizon(t *testing.T) {
	p := validParameters()
	p.Horizon.Years = MaxYears
	require.NoError(t, p.Validate())

	p.Horizon.Years = MaxYears + 1
	requireInvalid(t, p.Validate(), "horizon.years")

	p.Horizon.Years = 1 << 61
	requireInvalid(t, p.Validate(), "horizon.years")
}

func TestValidateLifeExpectancy(t *testing.T) {
	p := validParameters()
	p.Horizon.LifeExpectancy = 0
	require.NoError(t, p.Validate(), "an unset life expectancy is allowed")

	p.Horizon.LifeExpectancy = -1
	requireInvalid(t, p.Validate(), "horizon.life_expectancy")

	p.Horizon.LifeExpectancy = p.Horizon.CurrentAge
	requireInvalid(t, p.Validate(), "horizon.life_expectancy")
}

func TestValidateHoldingLots(t *testing.T) {
	p := validParameters()
	price := decimal.NewFromInt(-1)
	p.Investments.Holdings = []InvestmentHolding{{
		ID:           "h1",
		CurrentPrice: &price,
		Lots: []InvestmentPurchase{{
			Date: NewDate(2024, 1, 1), Units: decimal.NewFromInt(2), PricePerUnit: decimal.NewFromInt(5), TotalCost: decimal.NewFromInt(10),
		}},
	}}
	requireInvalid(t, p.Validate(), "investments.holdings[0].current_price")

	p.Investments.Holdings[0].CurrentPrice = nil
	require.NoError(t, p.Validate())

	p.Investments.Holdings[0].Lots[0].Fees = decimal.NewFromInt(-1)
	requireInvalid(t, p.Validate(), "investments.holdings[0].lots[0].fees")
}

func TestMonthlyStepClampsToMonthEnd(t *testing.T) {
	start := NewDate(2025, 1, 31)
	require.Equal(t, NewDate(2025, 2, 28), Monthly.Step(start, 1))
	require.Equal(t, NewDate(2025, 3, 31), Monthly.Step(start, 2))
	require.Equal(t, NewDate(2025, 4, 30), Monthly.Step(start, 3))
	require.Equal(t, NewDate(2026, 1, 31), Monthly.Step(start, 12))

	require.Equal(t, NewDate(2025, 4, 30), Quarterly.Step(start, 1))
	require.Equal(t, NewDate(2025, 2, 28), Annually.Step(NewDate(2024, 2, 29), 1))
	require.Equal(t, NewDate(2028, 2, 29), Annually.Step(NewDate(2024, 2, 29), 4))
	require.Equal(t, NewDate(2025, 1, 15), Weekly.Step(NewDate(2025, 1, 1), 2))
}
