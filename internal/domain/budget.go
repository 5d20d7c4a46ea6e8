package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Pure budgeting math. A department's budget is always the sum of its line
// item totals; no independently stored budget value may diverge from it.

// LineItemTotal computes quantity x unit price, rounded to 2 decimals
func LineItemTotal(item *LineItem) float64 {
	q := decimal.NewFromFloat(item.Quantity)
	p := decimal.NewFromFloat(item.UnitPrice)
	f, _ := q.Mul(p).Round(2).Float64()
	return f
}

// DepartmentBudget computes the sum of line item totals
func DepartmentBudget(items []LineItem) float64 {
	sum := decimal.Zero
	for i := range items {
		sum = sum.Add(decimal.NewFromFloat(LineItemTotal(&items[i])))
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// SumAmounts adds monetary amounts without accumulating float error
func SumAmounts(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// ParseNonNegativeDecimal parses a decimal string from client input and
// rejects negative or malformed values. Quantities and unit prices arrive
// as strings from older clients and must be validated before save.
func ParseNonNegativeDecimal(field, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", field, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	f, _ := d.Round(2).Float64()
	return f, nil
}
