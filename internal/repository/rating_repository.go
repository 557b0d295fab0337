package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/freightmarket/internal/model"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

const ratingStatsQuery = `
SELECT
	COUNT(*) AS total,
	COALESCE(SUM(score), 0) AS sum,
	COALESCE(SUM(CASE WHEN score = 5 THEN 1 ELSE 0 END), 0) AS five_star,
	COALESCE(SUM(CASE WHEN score >= 4 THEN 1 ELSE 0 END), 0) AS satisfied
FROM ratings
WHERE ratee_id = ?
`

// CreateAndAggregate stores a rating and refreshes the ratee's cached average and count
// from every rating it has received. The ratee row is locked for the duration so
// concurrent ratings of the same account serialize. A second rating by the same rater
// on the same listing surfaces as gorm.ErrDuplicatedKey.
func (r *RatingRepository) CreateAndAggregate(ctx context.Context, rating *model.Rating) (model.RatingStats, error) {
	if rating.ID == uuid.Nil {
		rating.ID = uuid.New()
	}

	var stats model.RatingStats
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ratee model.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", rating.RateeID).
			Take(&ratee).Error; err != nil {
			return err
		}
		if err := tx.Create(rating).Error; err != nil {
			return err
		}
		if err := tx.Raw(ratingStatsQuery, rating.RateeID).Scan(&stats).Error; err != nil {
			return err
		}
		return tx.Model(&model.Account{}).
			Where("id = ?", ratee.ID).
			Updates(map[string]any{
				"rating":        stats.Average(),
				"total_ratings": stats.Total,
			}).Error
	})
	if err != nil {
		return model.RatingStats{}, err
	}
	return stats, nil
}

// Exists reports whether raterID already rated the listing.
func (r *RatingRepository) Exists(ctx context.Context, listingID, raterID uuid.UUID) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM ratings WHERE listing_id = ? AND rater_id = ?
	`, listingID, raterID).Scan(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *RatingRepository) Stats(ctx context.Context, rateeID uuid.UUID) (model.RatingStats, error) {
	var stats model.RatingStats
	if err := r.db.WithContext(ctx).Raw(ratingStatsQuery, rateeID).Scan(&stats).Error; err != nil {
		return model.RatingStats{}, err
	}
	return stats, nil
}

type ratingRow struct {
	model.Rating
	RaterName          string
	RaterCompany       string
	RateeName          string
	RateeCompany       string
	ListingOrigin      string
	ListingDestination string
	ListingType        string
}

// List returns ratings with both parties and the listing route resolved, newest first.
func (r *RatingRepository) List(ctx context.Context, filter model.RatingFilter) ([]model.RatingView, error) {
	query := `
		SELECT
			r.*,
			fr.name AS rater_name,
			fr.company_name AS rater_company,
			te.name AS ratee_name,
			te.company_name AS ratee_company,
			COALESCE(l.origin, '') AS listing_origin,
			COALESCE(l.destination, '') AS listing_destination,
			COALESCE(l.type, '') AS listing_type
		FROM ratings r
		JOIN accounts fr ON fr.id = r.rater_id
		JOIN accounts te ON te.id = r.ratee_id
		LEFT JOIN listings l ON l.id = r.listing_id
		WHERE 1 = 1`
	var args []any
	if filter.RateeID != nil {
		query += ` AND r.ratee_id = ?`
		args = append(args, *filter.RateeID)
	}
	if filter.RaterID != nil {
		query += ` AND r.rater_id = ?`
		args = append(args, *filter.RaterID)
	}
	query += ` ORDER BY r.created_at DESC, r.id ASC`

	var rows []ratingRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	views := make([]model.RatingView, 0, len(rows))
	for _, row := range rows {
		views = append(views, model.RatingView{
			Rating:             row.Rating,
			RaterName:          row.RaterName,
			RaterCompany:       row.RaterCompany,
			RateeName:          row.RateeName,
			RateeCompany:       row.RateeCompany,
			ListingOrigin:      row.ListingOrigin,
			ListingDestination: row.ListingDestination,
			ListingType:        model.ListingType(row.ListingType),
		})
	}
	return views, nil
}
