package database

import (
	"fmt"
	"time"

	"task-management-api/internal/models"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns the database connection. It is created once at startup,
// handed to every service and closed on shutdown.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database file at path.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required)
func Open(path string, level logger.LogLevel) (*Store, error) {
	return OpenDialector(sqlite.Open(path), level)
}

// OpenDialector connects through an arbitrary gorm dialector.
func OpenDialector(dialector gorm.Dialector, level logger.LogLevel) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(level),
		// Ownership is enforced by the services; notices must outlive
		// the tasks they point at.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate creates or updates the schema (it will create tables if they don't exist)
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	log.Debug("database migrated")
	return nil
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ParseLogLevel maps a textual level onto the gorm logger levels.
func ParseLogLevel(level string) logger.LogLevel {
	switch level {
	case "SILENT":
		return logger.Silent
	case "ERROR":
		return logger.Error
	case "INFO", "DEBUG":
		return logger.Info
	default:
		return logger.Warn
	}
}

func newLogger(level logger.LogLevel) logger.Interface {
	return logger.New(log.StandardLogger(), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
