package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Expenses reference departments by a string key that exists in two
// persisted formats: the old format is the bare department name, the new
// format is "<phaseId>_<departmentName>". Normalization happens here, at
// the read boundary; aggregation logic never branches on the format.

// DepartmentKey builds the new-format key for a department within a phase
func DepartmentKey(phaseID uuid.UUID, name string) string {
	return phaseID.String() + "_" + name
}

// NormalizeDepartmentKey strips the "<phaseId>_" prefix when present and
// returns the bare department name. Keys carrying a different phase's
// prefix are returned unchanged: they do not belong to this phase.
func NormalizeDepartmentKey(phaseID uuid.UUID, key string) string {
	key = strings.TrimSpace(key)
	prefix := phaseID.String() + "_"
	if strings.HasPrefix(key, prefix) {
		return key[len(prefix):]
	}
	return key
}

// DepartmentNameFromKey returns the bare name regardless of which phase
// prefix the key carries. Used when attributing an expense whose phase is
// already known from its own phaseId field.
func DepartmentNameFromKey(key string) string {
	key = strings.TrimSpace(key)
	if i := strings.IndexByte(key, '_'); i > 0 {
		if _, err := uuid.Parse(key[:i]); err == nil {
			return key[i+1:]
		}
	}
	return key
}

// DepartmentKeyMatches reports whether an expense's raw department key
// refers to the named department of the given phase. Lookup order: exact
// match, new-format prefixed form, prefix-stripped form, then a
// case-insensitive display-name comparison.
func DepartmentKeyMatches(phaseID uuid.UUID, departmentName, rawKey string) bool {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == departmentName {
		return true
	}
	if rawKey == DepartmentKey(phaseID, departmentName) {
		return true
	}
	if NormalizeDepartmentKey(phaseID, rawKey) == departmentName {
		return true
	}
	return strings.EqualFold(DepartmentNameFromKey(rawKey), departmentName)
}
