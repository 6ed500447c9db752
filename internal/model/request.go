package model

import "github.com/shopspring/decimal"

// SimulationRequest is the body of /v1/simulate and /v1/compare.
type SimulationRequest struct {
	TenantID      string                  `json:"tenant_id,omitempty"`
	Configuration SimulationConfiguration `json:"configuration"`
}

// TransitionRequest asks whether a transition can be added to a configuration.
type TransitionRequest struct {
	Configuration SimulationConfiguration `json:"configuration"`
	Transition    ParameterTransition     `json:"transition"`
}

type PurchaseRequest struct {
	Holding  InvestmentHolding  `json:"holding"`
	Purchase InvestmentPurchase `json:"purchase"`
}

type SellRequest struct {
	Holding      InvestmentHolding `json:"holding"`
	Units        decimal.Decimal   `json:"units"`
	PricePerUnit decimal.Decimal   `json:"price_per_unit"`
}
