package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/auth"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/database"
	"github.com/prajwal-cubiquitous/Tracura-sub000/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestTenant is the tenant id used by test fixtures
const TestTenant = "tenant-test"

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema migrated. Each call returns a fresh database, so tests do not
// need cross-test cleanup.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory test database")

	// In-memory SQLite is per-connection; pin the pool to one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// ContextWithUser builds a request context carrying an authenticated caller
func ContextWithUser(userID string, roles ...domain.UserRoleType) context.Context {
	userCtx := &auth.UserContext{
		UserID:      userID,
		DisplayName: "Test User",
		Email:       userID + "@example.com",
		TenantID:    TestTenant,
		Roles:       roles,
	}
	return auth.WithUserContext(context.Background(), userCtx)
}

// CreateTestProject inserts a minimal active project owned by TestTenant
func CreateTestProject(t *testing.T, db *gorm.DB, name string, managerIDs ...string) *domain.Project {
	project := &domain.Project{
		TenantID:   TestTenant,
		Name:       name,
		Status:     domain.ProjectStatusActive,
		ManagerIDs: managerIDs,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTestPhase inserts an enabled phase on the given project
func CreateTestPhase(t *testing.T, db *gorm.DB, projectID uuid.UUID, name string, ordinal int) *domain.Phase {
	phase := &domain.Phase{
		ProjectID: projectID,
		Name:      name,
		Ordinal:   ordinal,
		Enabled:   true,
	}
	require.NoError(t, db.Create(phase).Error)
	return phase
}

// CreateTestUser inserts an active user under TestTenant
func CreateTestUser(t *testing.T, db *gorm.DB, id, displayName string, roles ...string) *domain.User {
	user := &domain.User{
		ID:          id,
		TenantID:    TestTenant,
		Email:       id + "@example.com",
		DisplayName: displayName,
		Roles:       roles,
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
