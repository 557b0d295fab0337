package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/freightmarket/internal/model"
)

var migrationModels = []any{
	&model.Account{},
	&model.Listing{},
	&model.ListingApplicant{},
	&model.Rating{},
}

var migrationStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_listings_matched_account_id ON listings (matched_account_id) WHERE matched_account_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_listings_completed_route ON listings (origin, destination) WHERE status = 'completed';`,
	`CREATE INDEX IF NOT EXISTS idx_listing_applicants_account_id ON listing_applicants (account_id);`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_rater_id ON ratings (rater_id);`,
}

var postgresStatements = []string{
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_listings_status') THEN
			ALTER TABLE listings ADD CONSTRAINT chk_listings_status
				CHECK (status IN ('active', 'matched', 'completed', 'cancelled'));
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_listings_type') THEN
			ALTER TABLE listings ADD CONSTRAINT chk_listings_type
				CHECK (type IN ('carrier-offer', 'cargo-request'));
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_listing_applicants_listing') THEN
			ALTER TABLE listing_applicants ADD CONSTRAINT fk_listing_applicants_listing
				FOREIGN KEY (listing_id) REFERENCES listings(id) ON DELETE CASCADE;
		END IF;
	END
	$$;`,
}

// Migrate brings the schema up to date. Safe to run on every start.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(migrationModels...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	statements := migrationStatements
	if db.Dialector.Name() == "postgres" {
		statements = append(append([]string{}, migrationStatements...), postgresStatements...)
	}
	for i, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
