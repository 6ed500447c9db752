package model

import "github.com/shopspring/decimal"

// InvestmentPurchase is one purchase lot of a holding.
type InvestmentPurchase struct {
	ID           string          `json:"id"`
	Date         Date            `json:"date"`
	Units        decimal.Decimal `json:"units"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Fees         decimal.Decimal `json:"fees"`
}

// InvestmentHolding is a position made of purchase lots. Units, TotalCost,
// PurchasePrice and CurrentValue are derived from Lots by the lots package
// and are never set directly.
type InvestmentHolding struct {
	ID           string               `json:"id"`
	Symbol       string               `json:"symbol"`
	Name         string               `json:"name,omitempty"`
	CurrentPrice *decimal.Decimal     `json:"current_price,omitempty"`
	Lots         []InvestmentPurchase `json:"lots"`

	Units         decimal.Decimal `json:"units"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentValue  decimal.Decimal `json:"current_value"`
}

func (h InvestmentHolding) clone() InvestmentHolding {
	out := h
	out.Lots = append([]InvestmentPurchase(nil), h.Lots...)
	if h.CurrentPrice != nil {
		p := *h.CurrentPrice
		out.CurrentPrice = &p
	}
	return out
}

// Sale is the outcome of selling units from a holding.
type Sale struct {
	Units        decimal.Decimal `json:"units"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Proceeds     decimal.Decimal `json:"proceeds"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	RealizedGain decimal.Decimal `json:"realized_gain"`
}
