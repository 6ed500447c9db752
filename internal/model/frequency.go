package model

import (
	"fmt"
	"time"
)

// Frequency is how often an amount recurs.
type Frequency string

const (
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
	Quarterly   Frequency = "quarterly"
	Annually    Frequency = "annually"
)

// PerYear returns the number of occurrences per year. An empty frequency is monthly.
func (f Frequency) PerYear() int {
	switch f {
	case Weekly:
		return 52
	case Fortnightly:
		return 26
	case Quarterly:
		return 4
	case Annually:
		return 1
	default:
		return 12
	}
}

// Valid reports whether f is a recognised frequency or empty.
func (f Frequency) Valid() bool {
	switch f {
	case "", Weekly, Fortnightly, Monthly, Quarterly, Annually:
		return true
	}
	return false
}

// Step returns the date n periods after start. Stepping is always computed
// from start, and month-based steps clamp to the last day of a shorter month,
// so a Jan-31 start steps to Feb-28 and then Mar-31.
func (f Frequency) Step(start Date, n int) Date {
	switch f {
	case Weekly:
		return DateOf(start.AddDate(0, 0, 7*n))
	case Fortnightly:
		return DateOf(start.AddDate(0, 0, 14*n))
	case Quarterly:
		return addMonths(start, 3*n)
	case Annually:
		return addMonths(start, 12*n)
	default:
		return addMonths(start, n)
	}
}

func addMonths(start Date, n int) Date {
	months := int(start.Month()) - 1 + n
	y := start.Year() + months/12
	m := time.Month(months%12 + 1)
	return NewDate(y, m, min(start.Day(), daysIn(m, y)))
}

// Convert rescales an amount expressed at frequency from to the cadence of f.
func (f Frequency) Convert(amount float64, from Frequency) float64 {
	return amount * float64(from.PerYear()) / float64(f.PerYear())
}

func (f Frequency) String() string {
	if f == "" {
		return string(Monthly)
	}
	return string(f)
}

func validateFrequency(field string, f Frequency) error {
	if !f.Valid() {
		return &ValidationError{
			Code:    CodeInvalidValue,
			Field:   field,
			Message: fmt.Sprintf("unknown frequency %q", string(f)),
		}
	}
	return nil
}
