package testutil

import (
	"task-management-api/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	store, err := database.OpenDialector(sqlite.Open(":memory:"), logger.Silent)
	if err != nil {
		return nil, err
	}
	// every pooled connection would otherwise see its own empty database
	sqlDB, err := store.DB().DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store.DB(), nil
}
