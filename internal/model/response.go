package model

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	TenantID               string `json:"tenant_id,omitempty"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type SimulationResponse struct {
	CalculationMetadata CalculationMetadata       `json:"calculation_metadata"`
	CalculationResult   *EnhancedSimulationResult `json:"calculation_result"`
}

type ComparisonResponse struct {
	CalculationMetadata CalculationMetadata         `json:"calculation_metadata"`
	CalculationResult   *ComparisonSimulationResult `json:"calculation_result"`
}

type HoldingResponse struct {
	Holding InvestmentHolding `json:"holding"`
	Sale    *Sale             `json:"sale,omitempty"`
}

type ValidationResponse struct {
	Valid         bool                     `json:"valid"`
	Configuration *SimulationConfiguration `json:"configuration,omitempty"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Period  *int   `json:"period,omitempty"`
	Field   string `json:"field,omitempty"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)
