package domain_test

import (
	"testing"

	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
)

func TestLineItemTotal(t *testing.T) {
	tests := []struct {
		name     string
		item     domain.LineItem
		expected float64
	}{
		{
			name:     "whole numbers",
			item:     domain.LineItem{Quantity: 10, UnitPrice: 250},
			expected: 2500,
		},
		{
			name:     "fractional quantity",
			item:     domain.LineItem{Quantity: 2.5, UnitPrice: 100},
			expected: 250,
		},
		{
			name:     "result rounded to two decimals",
			item:     domain.LineItem{Quantity: 3, UnitPrice: 33.333},
			expected: 100,
		},
		{
			name:     "binary float trap stays exact",
			item:     domain.LineItem{Quantity: 3, UnitPrice: 0.1},
			expected: 0.3,
		},
		{
			name:     "zero quantity",
			item:     domain.LineItem{Quantity: 0, UnitPrice: 999.99},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.LineItemTotal(&tt.item)
			if result != tt.expected {
				t.Errorf("LineItemTotal() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestDepartmentBudget(t *testing.T) {
	tests := []struct {
		name     string
		items    []domain.LineItem
		expected float64
	}{
		{
			name:     "no items means zero budget",
			items:    nil,
			expected: 0,
		},
		{
			name: "sum of item totals",
			items: []domain.LineItem{
				{Quantity: 10, UnitPrice: 100},
				{Quantity: 5, UnitPrice: 200},
			},
			expected: 2000,
		},
		{
			name: "fractional amounts do not drift",
			items: []domain.LineItem{
				{Quantity: 1, UnitPrice: 0.1},
				{Quantity: 1, UnitPrice: 0.2},
			},
			expected: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.DepartmentBudget(tt.items)
			if result != tt.expected {
				t.Errorf("DepartmentBudget() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSumAmounts(t *testing.T) {
	if got := domain.SumAmounts(0.1, 0.2); got != 0.3 {
		t.Errorf("SumAmounts(0.1, 0.2) = %v, want 0.3", got)
	}
	if got := domain.SumAmounts(1000, -250); got != 750 {
		t.Errorf("SumAmounts(1000, -250) = %v, want 750", got)
	}
	if got := domain.SumAmounts(); got != 0 {
		t.Errorf("SumAmounts() = %v, want 0", got)
	}
}

func TestParseNonNegativeDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		wantErr  bool
	}{
		{name: "plain integer", input: "42", expected: 42},
		{name: "decimal value", input: "19.99", expected: 19.99},
		{name: "surrounding whitespace trimmed", input: " 7.5 ", expected: 7.5},
		{name: "rounds to two decimals", input: "1.005", expected: 1.01},
		{name: "zero is allowed", input: "0", expected: 0},
		{name: "empty string rejected", input: "", wantErr: true},
		{name: "whitespace only rejected", input: "   ", wantErr: true},
		{name: "negative rejected", input: "-1", wantErr: true},
		{name: "non-numeric rejected", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := domain.ParseNonNegativeDecimal("amount", tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseNonNegativeDecimal(%q) expected error, got %v", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNonNegativeDecimal(%q) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ParseNonNegativeDecimal(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
