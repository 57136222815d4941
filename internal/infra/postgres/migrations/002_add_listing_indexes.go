package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// addListingIndexes adds the indexes used by candidate fetches and ops views.
//
// Candidate fetches read the newest rows first, so created_at carries a
// descending index. The GIN index on payload serves ad-hoc JSONB lookups
// (payload @> '{"city": "Pune"}') from psql.
func addListingIndexes() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_add_listing_indexes",
		Migrate: func(tx *gorm.DB) error {
			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);",
				"CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source);",
				"CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_listings_updated_at ON listings(updated_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_listings_payload ON listings USING GIN (payload jsonb_path_ops);",
			}

			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			for _, idx := range []string{
				"idx_listings_status",
				"idx_listings_source",
				"idx_listings_created_at",
				"idx_listings_updated_at",
				"idx_listings_payload",
			} {
				_ = tx.Exec("DROP INDEX IF EXISTS " + idx).Error
			}
			return nil
		},
	}
}
