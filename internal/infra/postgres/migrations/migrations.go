// Package migrations holds the listing mirror schema, applied with gormigrate.
package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// options keeps migration bookkeeping in its own table and applies each
// migration in a transaction.
var options = &gormigrate.Options{
	TableName:      "schema_migrations",
	IDColumnName:   "id",
	IDColumnSize:   255,
	UseTransaction: true,
}

// Migrations returns all database migrations in order.
func Migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		createListingsTable(),
		addListingIndexes(),
	}
}

// Run applies all pending migrations.
func Run(db *gorm.DB) error {
	return gormigrate.New(db, options, Migrations()).Migrate()
}

// Rollback reverts the most recent migration.
func Rollback(db *gorm.DB) error {
	return gormigrate.New(db, options, Migrations()).RollbackLast()
}
