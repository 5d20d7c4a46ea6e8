package domain

import (
	"fmt"
	"strings"
	"time"
)

// BudgetDateLayout is the fixed calendar-date format used for phase start,
// phase end and extension dates. Stored documents carry these as plain
// strings; audit timestamps use native time values. The mix is deliberate
// and must be preserved for compatibility with existing data.
const BudgetDateLayout = "02/01/2006"

// ParseBudgetDate parses a dd/MM/yyyy date string
func ParseBudgetDate(s string) (time.Time, error) {
	t, err := time.Parse(BudgetDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd/MM/yyyy: %w", s, err)
	}
	return t, nil
}

// FormatBudgetDate formats a time as a dd/MM/yyyy string
func FormatBudgetDate(t time.Time) string {
	return t.Format(BudgetDateLayout)
}

// SameBudgetDate compares two stored date strings after trimming whitespace.
// This is a string comparison, not a date-value comparison: "01/1/2026" and
// "01/01/2026" are NOT equal, matching how existing clients derive state.
func SameBudgetDate(a, b string) bool {
	return strings.TrimSpace(a) != "" && strings.TrimSpace(a) == strings.TrimSpace(b)
}

// phaseBounds resolves the optional stored bounds of a phase.
// A missing or unparseable bound places no constraint on that side.
func (p *Phase) phaseBounds() (start, end *time.Time) {
	if p.StartDate != nil {
		if t, err := ParseBudgetDate(*p.StartDate); err == nil {
			start = &t
		}
	}
	if p.EndDate != nil {
		if t, err := ParseBudgetDate(*p.EndDate); err == nil {
			end = &t
		}
	}
	return start, end
}

// InProgressAt reports whether the phase is running on the given day:
// today within [start,end] inclusive, missing bounds unconstrained.
func (p *Phase) InProgressAt(today time.Time) bool {
	day := truncateToDay(today)
	start, end := p.phaseBounds()
	if start != nil && day.Before(*start) {
		return false
	}
	if end != nil && day.After(*end) {
		return false
	}
	return true
}

// CompletedAt reports whether the phase ended before the given day
func (p *Phase) CompletedAt(today time.Time) bool {
	_, end := p.phaseBounds()
	return end != nil && truncateToDay(today).After(*end)
}

// FutureAt reports whether the phase starts after the given day
func (p *Phase) FutureAt(today time.Time) bool {
	start, _ := p.phaseBounds()
	return start != nil && truncateToDay(today).Before(*start)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
