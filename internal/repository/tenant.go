package repository

import (
	"context"
	"strings"

	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (updated_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "updatedAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config
// fieldMap maps API field names to database column names
// Returns the default sort if field is not in whitelist
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// ApplyTenantFilter applies the multi-tenant filter to a GORM query
// This should be called on queries against tenant-owned tables
// If no authenticated user is on the context, the query is returned unchanged
// (internal callers such as background jobs operate across tenants)
func ApplyTenantFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	uc, ok := auth.FromContext(ctx)
	if ok && uc.TenantID != "" {
		return query.Where("tenant_id = ?", uc.TenantID)
	}
	return query
}

// ApplyTenantFilterWithColumn applies the tenant filter using a specific column name
// Use this when the tenant_id column needs table qualification
func ApplyTenantFilterWithColumn(ctx context.Context, query *gorm.DB, columnName string) *gorm.DB {
	uc, ok := auth.FromContext(ctx)
	if ok && uc.TenantID != "" {
		return query.Where(columnName+" = ?", uc.TenantID)
	}
	return query
}

// MustHaveTenantAccess checks if the user on the context may touch a record
// owned by the given tenant. Background jobs without a user context pass.
func MustHaveTenantAccess(ctx context.Context, recordTenantID string) bool {
	uc, ok := auth.FromContext(ctx)
	if !ok || uc.TenantID == "" {
		return true
	}
	return uc.TenantID == recordTenantID
}
