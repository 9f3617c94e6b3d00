package testutil

import (
	"strings"
	"testing"

	"task-management-api/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SeedUser inserts an active user named name with email <name>@example.com.
func SeedUser(t testing.TB, db *gorm.DB, name string) models.User {
	t.Helper()
	u := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "x",
		Role:     "developer",
		Title:    "Engineer",
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// MustDB returns a fresh migrated in-memory database or fails the test.
func MustDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := NewInMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
