// Package testutil opens throwaway SQLite databases migrated with the
// production schema and seeds fixtures into them.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lshigami/jlpt-assessment/config"
	"github.com/lshigami/jlpt-assessment/database"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

// DB returns a fresh in-memory database private to tb. It is limited to one
// connection, so code under test must not use the root handle while it
// holds a transaction.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	cfg := &config.Config{Database: config.Database{
		Driver: "sqlite",
		Name:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}}
	db, err := database.NewDatabase(cfg)
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	db.Logger = gormLogger.Default.LogMode(gormLogger.Silent)

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
