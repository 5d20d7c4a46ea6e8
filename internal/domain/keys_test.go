package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
)

func TestNormalizeDepartmentKey(t *testing.T) {
	phaseID := uuid.New()
	otherPhaseID := uuid.New()

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "bare name passes through",
			key:      "Set",
			expected: "Set",
		},
		{
			name:     "own phase prefix stripped",
			key:      phaseID.String() + "_Set",
			expected: "Set",
		},
		{
			name:     "foreign phase prefix kept",
			key:      otherPhaseID.String() + "_Set",
			expected: otherPhaseID.String() + "_Set",
		},
		{
			name:     "whitespace trimmed",
			key:      "  Costume  ",
			expected: "Costume",
		},
		{
			name:     "name containing underscore survives",
			key:      phaseID.String() + "_Set_Design",
			expected: "Set_Design",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.NormalizeDepartmentKey(phaseID, tt.key); got != tt.expected {
				t.Errorf("NormalizeDepartmentKey() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDepartmentNameFromKey(t *testing.T) {
	phaseID := uuid.New()

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{name: "bare name", key: "Costume", expected: "Costume"},
		{name: "any phase prefix stripped", key: phaseID.String() + "_Costume", expected: "Costume"},
		{name: "underscore without uuid prefix kept", key: "Set_Design", expected: "Set_Design"},
		{name: "empty key", key: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.DepartmentNameFromKey(tt.key); got != tt.expected {
				t.Errorf("DepartmentNameFromKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestDepartmentKeyMatches(t *testing.T) {
	phaseID := uuid.New()
	otherPhaseID := uuid.New()

	tests := []struct {
		name     string
		deptName string
		rawKey   string
		expected bool
	}{
		{
			name:     "exact bare name",
			deptName: "Set",
			rawKey:   "Set",
			expected: true,
		},
		{
			name:     "new format key for this phase",
			deptName: "Set",
			rawKey:   phaseID.String() + "_Set",
			expected: true,
		},
		{
			name:     "case-insensitive display name fallback",
			deptName: "Set",
			rawKey:   "set",
			expected: true,
		},
		{
			name:     "foreign phase prefix still matches by name",
			deptName: "Set",
			rawKey:   otherPhaseID.String() + "_set",
			expected: true,
		},
		{
			name:     "different department",
			deptName: "Set",
			rawKey:   "Costume",
			expected: false,
		},
		{
			name:     "leading whitespace on key",
			deptName: "Costume",
			rawKey:   "  Costume",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.DepartmentKeyMatches(phaseID, tt.deptName, tt.rawKey); got != tt.expected {
				t.Errorf("DepartmentKeyMatches(%q, %q) = %v, want %v", tt.deptName, tt.rawKey, got, tt.expected)
			}
		})
	}
}
