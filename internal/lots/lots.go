// Package lots keeps FIFO cost-basis accounting for investment holdings.
// Every operation returns a new holding; the input is never modified.
package lots

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"projection-engine/internal/model"
)

// Accounting error codes.
const (
	CodeInsufficientUnits = "INSUFFICIENT_UNITS"
	CodeInvalidUnits      = "INVALID_UNITS"
	CodeInvalidPrice      = "INVALID_PRICE"
	CodeInvalidFees       = "INVALID_FEES"
	CodeInvalidCost       = "INVALID_COST"
)

// costPrecision is the number of decimal places kept for per-unit cost.
const costPrecision = 16

// AccountingError rejects a holding mutation. The holding is left unchanged.
type AccountingError struct {
	Code    string
	Message string
}

func (e *AccountingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddPurchase records a new lot. A zero TotalCost is filled in as
// units × price + fees. Lots stay ordered by date; same-day lots keep
// insertion order.
func AddPurchase(h model.InvestmentHolding, p model.InvestmentPurchase) (model.InvestmentHolding, error) {
	if !p.Units.IsPositive() {
		return h, &AccountingError{Code: CodeInvalidUnits, Message: "purchase units must be positive"}
	}
	if !p.PricePerUnit.IsPositive() {
		return h, &AccountingError{Code: CodeInvalidPrice, Message: "purchase price must be positive"}
	}
	if p.Fees.IsNegative() {
		return h, &AccountingError{Code: CodeInvalidFees, Message: "fees must not be negative"}
	}
	if p.TotalCost.IsNegative() {
		return h, &AccountingError{Code: CodeInvalidCost, Message: "total cost must not be negative"}
	}
	if p.TotalCost.IsZero() {
		p.TotalCost = p.Units.Mul(p.PricePerUnit).Add(p.Fees)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	out := h
	out.Lots = make([]model.InvestmentPurchase, 0, len(h.Lots)+1)
	out.Lots = append(out.Lots, h.Lots...)
	out.Lots = append(out.Lots, p)
	sort.SliceStable(out.Lots, func(i, j int) bool {
		return out.Lots[i].Date.Before(out.Lots[j].Date)
	})
	return Recompute(out), nil
}

// Sell removes units oldest lot first and reports the realised gain.
// A partially consumed lot keeps its date and per-unit price; its total
// cost becomes the units left times its per-unit cost, rounded to
// costPrecision places.
func Sell(h model.InvestmentHolding, units, price decimal.Decimal) (model.InvestmentHolding, model.Sale, error) {
	if !units.IsPositive() {
		return h, model.Sale{}, &AccountingError{Code: CodeInvalidUnits, Message: "units to sell must be positive"}
	}
	if !price.IsPositive() {
		return h, model.Sale{}, &AccountingError{Code: CodeInvalidPrice, Message: "sale price must be positive"}
	}
	held := totalUnits(h.Lots)
	if units.GreaterThan(held) {
		return h, model.Sale{}, &AccountingError{
			Code:    CodeInsufficientUnits,
			Message: fmt.Sprintf("cannot sell %s units, only %s held", units, held),
		}
	}

	remaining := units
	costBasis := decimal.Zero
	kept := make([]model.InvestmentPurchase, 0, len(h.Lots))
	for _, lot := range h.Lots {
		if remaining.IsZero() {
			kept = append(kept, lot)
			continue
		}
		if lot.Units.LessThanOrEqual(remaining) {
			costBasis = costBasis.Add(lot.TotalCost)
			remaining = remaining.Sub(lot.Units)
			continue
		}
		left := lot.Units.Sub(remaining)
		leftCost := left.Mul(lot.TotalCost.DivRound(lot.Units, costPrecision))
		costBasis = costBasis.Add(lot.TotalCost.Sub(leftCost))
		lot.Units = left
		lot.TotalCost = leftCost
		kept = append(kept, lot)
		remaining = decimal.Zero
	}

	out := h
	out.Lots = kept
	proceeds := units.Mul(price)
	sale := model.Sale{
		Units:        units,
		PricePerUnit: price,
		Proceeds:     proceeds,
		CostBasis:    costBasis,
		RealizedGain: proceeds.Sub(costBasis),
	}
	return Recompute(out), sale, nil
}

// Revalue sets the current market price of a holding.
func Revalue(h model.InvestmentHolding, price decimal.Decimal) (model.InvestmentHolding, error) {
	if price.IsNegative() {
		return h, &AccountingError{Code: CodeInvalidPrice, Message: "price must not be negative"}
	}
	out := h
	out.CurrentPrice = &price
	return Recompute(out), nil
}

// Recompute derives the holding aggregates from its lots.
func Recompute(h model.InvestmentHolding) model.InvestmentHolding {
	h.Units = totalUnits(h.Lots)
	h.TotalCost = decimal.Zero
	for _, lot := range h.Lots {
		h.TotalCost = h.TotalCost.Add(lot.TotalCost)
	}
	h.PurchasePrice = decimal.Zero
	if h.Units.IsPositive() {
		h.PurchasePrice = h.TotalCost.Div(h.Units)
	}
	if h.CurrentPrice != nil {
		h.CurrentValue = h.Units.Mul(*h.CurrentPrice)
	} else {
		h.CurrentValue = h.TotalCost
	}
	return h
}

// MarketValue sums the current value of holdings as a float for the
// period stepper.
func MarketValue(holdings []model.InvestmentHolding) float64 {
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(Recompute(h).CurrentValue)
	}
	return total.InexactFloat64()
}

func totalUnits(lots []model.InvestmentPurchase) decimal.Decimal {
	sum := decimal.Zero
	for _, lot := range lots {
		sum = sum.Add(lot.Units)
	}
	return sum
}
