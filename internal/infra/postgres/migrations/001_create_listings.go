package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createListingsTable creates the listing mirror table.
func createListingsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_listings",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS listings (
					id VARCHAR(100) PRIMARY KEY,
					source VARCHAR(50) NOT NULL,
					status VARCHAR(30) NOT NULL,
					title VARCHAR(500),
					images TEXT[],

					-- Upstream row, stored verbatim
					payload JSONB NOT NULL,

					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS listings;").Error
		},
	}
}
