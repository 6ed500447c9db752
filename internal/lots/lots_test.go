package lots

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"projection-engine/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func buildHolding(t *testing.T) model.InvestmentHolding {
	t.Helper()
	h := model.InvestmentHolding{ID: "h1", Symbol: "VAS"}
	purchases := []model.InvestmentPurchase{
		{ID: "lot-b", Date: model.MustParseDate("2022-03-01"), Units: d("20"), PricePerUnit: d("12")},
		{ID: "lot-a", Date: model.MustParseDate("2021-01-15"), Units: d("10"), PricePerUnit: d("10"), Fees: d("5")},
		{ID: "lot-c", Date: model.MustParseDate("2023-07-01"), Units: d("5"), PricePerUnit: d("20")},
	}
	var err error
	for _, p := range purchases {
		h, err = AddPurchase(h, p)
		require.NoError(t, err)
	}
	return h
}

func TestAddPurchaseOrdersLotsAndDerivesAggregates(t *testing.T) {
	h := buildHolding(t)

	require.Len(t, h.Lots, 3)
	require.Equal(t, "lot-a", h.Lots[0].ID)
	require.Equal(t, "lot-b", h.Lots[1].ID)
	require.Equal(t, "lot-c", h.Lots[2].ID)

	require.True(t, h.Lots[0].TotalCost.Equal(d("105")), "fees are part of cost: %s", h.Lots[0].TotalCost)
	require.True(t, h.Units.Equal(d("35")))
	require.True(t, h.TotalCost.Equal(d("445")))
	require.True(t, h.PurchasePrice.Equal(d("445").Div(d("35"))))
	require.True(t, h.CurrentValue.Equal(h.TotalCost), "without a price the value is the cost basis")
}

func TestAddPurchaseAssignsID(t *testing.T) {
	h, err := AddPurchase(model.InvestmentHolding{}, model.InvestmentPurchase{
		Date: model.MustParseDate("2024-01-01"), Units: d("1"), PricePerUnit: d("1"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, h.Lots[0].ID)
}

func TestAddPurchaseRejectsBadInput(t *testing.T) {
	base := buildHolding(t)
	cases := []struct {
		name string
		p    model.InvestmentPurchase
		code string
	}{
		{"zero units", model.InvestmentPurchase{Units: d("0"), PricePerUnit: d("1")}, CodeInvalidUnits},
		{"negative price", model.InvestmentPurchase{Units: d("1"), PricePerUnit: d("-1")}, CodeInvalidPrice},
		{"negative fees", model.InvestmentPurchase{Units: d("1"), PricePerUnit: d("1"), Fees: d("-2")}, CodeInvalidFees},
		{"negative total cost", model.InvestmentPurchase{Units: d("1"), PricePerUnit: d("1"), TotalCost: d("-3")}, CodeInvalidCost},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AddPurchase(base, tc.p)
			var accErr *AccountingError
			require.True(t, errors.As(err, &accErr))
			require.Equal(t, tc.code, accErr.Code)
			require.Equal(t, base, got)
		})
	}
}

func TestSellAllDrainsEveryLot(t *testing.T) {
	h := buildHolding(t)

	out, sale, err := Sell(h, d("35"), d("15"))
	require.NoError(t, err)
	require.Empty(t, out.Lots)
	require.True(t, out.Units.IsZero())
	require.True(t, out.TotalCost.IsZero())
	require.True(t, out.PurchasePrice.IsZero())
	require.True(t, sale.Proceeds.Equal(d("525")))
	require.True(t, sale.CostBasis.Equal(d("445")))
	require.True(t, sale.RealizedGain.Equal(d("80")))
}

func TestSellPartialConsumesOldestFirst(t *testing.T) {
	h := buildHolding(t)

	out, sale, err := Sell(h, d("15"), d("14"))
	require.NoError(t, err)

	// lot-a (10 units) is gone, lot-b keeps 15 of 20 units.
	require.Len(t, out.Lots, 2)
	require.Equal(t, "lot-b", out.Lots[0].ID)
	require.True(t, out.Lots[0].Units.Equal(d("15")))
	require.True(t, out.Lots[0].PricePerUnit.Equal(d("12")), "per-unit cost is preserved")
	require.True(t, out.Lots[0].TotalCost.Equal(d("180")))
	require.Equal(t, h.Lots[1].Date, out.Lots[0].Date)
	require.Equal(t, h.Lots[2], out.Lots[1])

	require.True(t, out.Units.Equal(h.Units.Sub(d("15"))))
	require.True(t, sale.CostBasis.Equal(d("165")), "105 from lot-a plus 5 units of lot-b at 12")
	require.True(t, sale.RealizedGain.Equal(d("210").Sub(d("165"))))
}

func TestSellPartialKeepsPerUnitCostExactly(t *testing.T) {
	h, err := AddPurchase(model.InvestmentHolding{ID: "h2"}, model.InvestmentPurchase{
		ID: "thirds", Date: model.MustParseDate("2024-01-01"), Units: d("3"), PricePerUnit: d("3"), Fees: d("1"),
	})
	require.NoError(t, err)
	unitCost := d("10").DivRound(d("3"), costPrecision)

	out, sale, err := Sell(h, d("1"), d("4"))
	require.NoError(t, err)
	lot := out.Lots[0]
	require.True(t, lot.Units.Equal(d("2")))
	require.True(t, lot.TotalCost.Equal(unitCost.Mul(d("2"))), "remaining cost %s", lot.TotalCost)
	require.True(t, lot.TotalCost.DivRound(lot.Units, costPrecision).Equal(unitCost))
	require.True(t, sale.CostBasis.Add(lot.TotalCost).Equal(d("10")), "cost is conserved")
}

func TestSellDoesNotTouchInput(t *testing.T) {
	h := buildHolding(t)
	before := append([]model.InvestmentPurchase(nil), h.Lots...)

	_, _, err := Sell(h, d("12"), d("11"))
	require.NoError(t, err)
	require.Equal(t, before, h.Lots)
}

func TestSellMoreThanHeldIsRejected(t *testing.T) {
	h := buildHolding(t)
	before := append([]model.InvestmentPurchase(nil), h.Lots...)

	out, _, err := Sell(h, d("36"), d("10"))
	var accErr *AccountingError
	require.True(t, errors.As(err, &accErr))
	require.Equal(t, CodeInsufficientUnits, accErr.Code)
	require.Equal(t, before, out.Lots)
	require.Equal(t, before, h.Lots)
}

func TestSellRejectsNonPositiveInput(t *testing.T) {
	h := buildHolding(t)

	_, _, err := Sell(h, d("0"), d("10"))
	require.Error(t, err)
	_, _, err = Sell(h, d("1"), d("0"))
	require.Error(t, err)
}

func TestRevalueUsesCurrentPrice(t *testing.T) {
	h := buildHolding(t)

	out, err := Revalue(h, d("30"))
	require.NoError(t, err)
	require.True(t, out.CurrentValue.Equal(d("1050")))
	require.InDelta(t, 1050.0, MarketValue([]model.InvestmentHolding{out}), 1e-9)
}
