package model

// DefaultParameters is the single source of default inputs. Every caller
// that needs a starting household (CLI, HTTP, tests) goes through here.
func DefaultParameters(start Date) UserParameters {
	return UserParameters{
		Income: Income{
			Amount:     8500,
			Frequency:  Monthly,
			GrowthRate: 0.025,
		},
		Expenses: Expenses{
			Fixed: ExpenseItem{Name: "Living costs", Amount: 3200, Frequency: Monthly, GrowthRate: 0.03},
			Items: []ExpenseItem{
				{Name: "Insurance", Amount: 2400, Frequency: Annually, GrowthRate: 0.04},
				{Name: "Utilities", Amount: 650, Frequency: Quarterly, GrowthRate: 0.03},
			},
		},
		Loan: Loan{
			Principal:     300000,
			InterestRate:  0.055,
			Payment:       1900,
			Frequency:     Monthly,
			OffsetEnabled: true,
			OffsetBalance: 10000,
		},
		Investments: Investments{
			Contribution: 500,
			Frequency:    Monthly,
			ReturnRate:   0.07,
			Balance:      25000,
		},
		Superannuation: Superannuation{
			ContributionRate: 0.115,
			ReturnRate:       0.07,
			Balance:          80000,
		},
		Goal: RetirementGoal{
			DesiredAnnualIncome: 60000,
			TargetAge:           60,
		},
		Horizon: Horizon{
			CurrentAge:     35,
			Years:          40,
			StartDate:      start,
			Period:         Monthly,
			LifeExpectancy: 90,
		},
		Household: []Person{
			{Name: "Primary", CurrentAge: 35, RetirementAge: 67},
		},
		CashBalance: 5000,
	}
}

// DefaultConfiguration returns the defaults with no scheduled transitions.
func DefaultConfiguration(start Date) SimulationConfiguration {
	return SimulationConfiguration{
		BaseParameters: DefaultParameters(start),
		Transitions:    []ParameterTransition{},
	}
}
