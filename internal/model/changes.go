package model

// ParameterChanges is a typed partial UserParameters. A nil field means
// "unchanged"; a set field overrides the corresponding parameter. Horizon is
// deliberately absent: the cadence and length of a run are fixed at start.
type ParameterChanges struct {
	Income         *IncomeChanges         `json:"income,omitempty"`
	Expenses       *ExpenseChanges        `json:"expenses,omitempty"`
	Loan           *LoanChanges           `json:"loan,omitempty"`
	Investments    *InvestmentChanges     `json:"investments,omitempty"`
	Superannuation *SuperannuationChanges `json:"superannuation,omitempty"`
	Goal           *GoalChanges           `json:"goal,omitempty"`
	Household      *[]Person              `json:"household,omitempty"`
	CashBalance    *float64               `json:"cash_balance,omitempty"`
}

type IncomeChanges struct {
	Amount     *float64   `json:"amount,omitempty"`
	Frequency  *Frequency `json:"frequency,omitempty"`
	TaxRate    *float64   `json:"tax_rate,omitempty"`
	GrowthRate *float64   `json:"growth_rate,omitempty"`
}

type ExpenseChanges struct {
	Fixed *ExpenseItem   `json:"fixed,omitempty"`
	Items *[]ExpenseItem `json:"items,omitempty"`
}

type LoanChanges struct {
	Principal          *float64   `json:"principal,omitempty"`
	InterestRate       *float64   `json:"interest_rate,omitempty"`
	Payment            *float64   `json:"payment,omitempty"`
	Frequency          *Frequency `json:"frequency,omitempty"`
	OffsetEnabled      *bool      `json:"offset_enabled,omitempty"`
	OffsetBalance      *float64   `json:"offset_balance,omitempty"`
	InterestDeductible *bool      `json:"interest_deductible,omitempty"`
}

type InvestmentChanges struct {
	Contribution *float64   `json:"contribution,omitempty"`
	Frequency    *Frequency `json:"frequency,omitempty"`
	ReturnRate   *float64   `json:"return_rate,omitempty"`
	Balance      *float64   `json:"balance,omitempty"`
}

type SuperannuationChanges struct {
	ContributionRate *float64 `json:"contribution_rate,omitempty"`
	ReturnRate       *float64 `json:"return_rate,omitempty"`
	Balance          *float64 `json:"balance,omitempty"`
}

type GoalChanges struct {
	DesiredAnnualIncome *float64 `json:"desired_annual_income,omitempty"`
	TargetAge           *int     `json:"target_age,omitempty"`
}

// Keys lists the dotted parameter paths that c overrides, in declaration order.
func (c ParameterChanges) Keys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	if in := c.Income; in != nil {
		add(in.Amount != nil, "income.amount")
		add(in.Frequency != nil, "income.frequency")
		add(in.TaxRate != nil, "income.tax_rate")
		add(in.GrowthRate != nil, "income.growth_rate")
	}
	if ex := c.Expenses; ex != nil {
		add(ex.Fixed != nil, "expenses.fixed")
		add(ex.Items != nil, "expenses.items")
	}
	if l := c.Loan; l != nil {
		add(l.Principal != nil, "loan.principal")
		add(l.InterestRate != nil, "loan.interest_rate")
		add(l.Payment != nil, "loan.payment")
		add(l.Frequency != nil, "loan.frequency")
		add(l.OffsetEnabled != nil, "loan.offset_enabled")
		add(l.OffsetBalance != nil, "loan.offset_balance")
		add(l.InterestDeductible != nil, "loan.interest_deductible")
	}
	if inv := c.Investments; inv != nil {
		add(inv.Contribution != nil, "investments.contribution")
		add(inv.Frequency != nil, "investments.frequency")
		add(inv.ReturnRate != nil, "investments.return_rate")
		add(inv.Balance != nil, "investments.balance")
	}
	if s := c.Superannuation; s != nil {
		add(s.ContributionRate != nil, "superannuation.contribution_rate")
		add(s.ReturnRate != nil, "superannuation.return_rate")
		add(s.Balance != nil, "superannuation.balance")
	}
	if g := c.Goal; g != nil {
		add(g.DesiredAnnualIncome != nil, "goal.desired_annual_income")
		add(g.TargetAge != nil, "goal.target_age")
	}
	add(c.Household != nil, "household")
	add(c.CashBalance != nil, "cash_balance")
	return keys
}

// IsEmpty reports whether c overrides nothing.
func (c ParameterChanges) IsEmpty() bool {
	return len(c.Keys()) == 0
}

// ApplyTo returns p with every set field of c folded in. p is not modified.
func (c ParameterChanges) ApplyTo(p UserParameters) UserParameters {
	out := p.Clone()
	if in := c.Income; in != nil {
		setFloat(&out.Income.Amount, in.Amount)
		setFreq(&out.Income.Frequency, in.Frequency)
		setFloat(&out.Income.TaxRate, in.TaxRate)
		setFloat(&out.Income.GrowthRate, in.GrowthRate)
	}
	if ex := c.Expenses; ex != nil {
		if ex.Fixed != nil {
			out.Expenses.Fixed = *ex.Fixed
		}
		if ex.Items != nil {
			out.Expenses.Items = append([]ExpenseItem(nil), (*ex.Items)...)
		}
	}
	if l := c.Loan; l != nil {
		setFloat(&out.Loan.Principal, l.Principal)
		setFloat(&out.Loan.InterestRate, l.InterestRate)
		setFloat(&out.Loan.Payment, l.Payment)
		setFreq(&out.Loan.Frequency, l.Frequency)
		setBool(&out.Loan.OffsetEnabled, l.OffsetEnabled)
		setFloat(&out.Loan.OffsetBalance, l.OffsetBalance)
		setBool(&out.Loan.InterestDeductible, l.InterestDeductible)
	}
	if inv := c.Investments; inv != nil {
		setFloat(&out.Investments.Contribution, inv.Contribution)
		setFreq(&out.Investments.Frequency, inv.Frequency)
		setFloat(&out.Investments.ReturnRate, inv.ReturnRate)
		setFloat(&out.Investments.Balance, inv.Balance)
	}
	if s := c.Superannuation; s != nil {
		setFloat(&out.Superannuation.ContributionRate, s.ContributionRate)
		setFloat(&out.Superannuation.ReturnRate, s.ReturnRate)
		setFloat(&out.Superannuation.Balance, s.Balance)
	}
	if g := c.Goal; g != nil {
		setFloat(&out.Goal.DesiredAnnualIncome, g.DesiredAnnualIncome)
		if g.TargetAge != nil {
			out.Goal.TargetAge = *g.TargetAge
		}
	}
	if c.Household != nil {
		out.Household = clonePersons(*c.Household)
	}
	setFloat(&out.CashBalance, c.CashBalance)
	return out
}

// Validate checks every set value with the same rules as
// UserParameters.Validate. Zero values are always valid, so folding c into
// an empty snapshot surfaces exactly the offending override.
func (c ParameterChanges) Validate() error {
	if c.IsEmpty() {
		return &ValidationError{Code: CodeEmptyChanges, Field: "changes", Message: "a transition must change at least one parameter"}
	}
	probe := UserParameters{Horizon: Horizon{Years: 1, StartDate: NewDate(2000, 1, 1)}}
	return c.ApplyTo(probe).Validate()
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setFreq(dst *Frequency, v *Frequency) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// BalanceResets holds the running balances a transition overwrites when it
// takes effect. Nil means the running balance carries on.
type BalanceResets struct {
	Loan           *float64
	Offset         *float64
	Investments    *float64
	Superannuation *float64
	Cash           *float64
}

// Balances extracts the balance-bearing overrides of c.
func (c ParameterChanges) Balances() BalanceResets {
	var r BalanceResets
	if c.Loan != nil {
		r.Loan = c.Loan.Principal
		r.Offset = c.Loan.OffsetBalance
	}
	if c.Investments != nil {
		r.Investments = c.Investments.Balance
	}
	if c.Superannuation != nil {
		r.Superannuation = c.Superannuation.Balance
	}
	r.Cash = c.CashBalance
	return r
}
