package services_test

import (
	"path/filepath"
	"testing"

	"github.com/sainivas456/TaskFlow-sub000/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB returns a sqlite-backed gorm store with the full schema. Each
// test gets its own database file under t.TempDir.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Task{},
		&models.Label{},
		&models.Subtask{},
		&models.TimeEntry{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	user := models.User{
		ID:       uuid.Must(uuid.NewV4()),
		Email:    uuid.Must(uuid.NewV4()).String() + "@example.com",
		Password: "hashed",
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }
