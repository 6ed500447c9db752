package model

// CalculationMessage is a non-fatal finding attached to a result.
type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

// Warning codes attached to simulation results.
const (
	WarnDebtGrowth           = "DEBT_GROWTH"
	WarnCashShortfall        = "CASH_SHORTFALL"
	WarnNegativeCash         = "NEGATIVE_CASH"
	WarnGoalUnreached        = "RETIREMENT_GOAL_UNREACHED"
	WarnSlowProgress         = "SLOW_PROGRESS"
	WarnTransitionOutOfRange = "TRANSITION_BEYOND_HORIZON"
)
