package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freightmarket/internal/model"
)

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingViewSelect = `
SELECT
	l.*,
	p.name AS poster_name,
	p.company_name AS poster_company_name,
	p.rating AS poster_rating,
	p.total_ratings AS poster_total_ratings,
	p.completed_deliveries AS poster_completed_deliveries,
	m.name AS matched_name,
	m.company_name AS matched_company_name,
	m.rating AS matched_rating,
	m.total_ratings AS matched_total_ratings,
	m.completed_deliveries AS matched_completed_deliveries
FROM listings l
JOIN accounts p ON p.id = l.poster_id
LEFT JOIN accounts m ON m.id = l.matched_account_id
`

type listingRow struct {
	model.Listing
	PosterName                 string
	PosterCompanyName          string
	PosterRating               float64
	PosterTotalRatings         int
	PosterCompletedDeliveries  int
	MatchedName                *string
	MatchedCompanyName         *string
	MatchedRating              *float64
	MatchedTotalRatings        *int
	MatchedCompletedDeliveries *int
}

func (r listingRow) view() model.ListingView {
	v := model.ListingView{
		Listing: r.Listing,
		Poster: model.AccountSummary{
			ID:                  r.PosterID,
			Name:                r.PosterName,
			CompanyName:         r.PosterCompanyName,
			Rating:              r.PosterRating,
			TotalRatings:        r.PosterTotalRatings,
			CompletedDeliveries: r.PosterCompletedDeliveries,
		},
	}
	if r.MatchedAccountID != nil && r.MatchedName != nil {
		matched := model.AccountSummary{ID: *r.MatchedAccountID, Name: *r.MatchedName}
		if r.MatchedCompanyName != nil {
			matched.CompanyName = *r.MatchedCompanyName
		}
		if r.MatchedRating != nil {
			matched.Rating = *r.MatchedRating
		}
		if r.MatchedTotalRatings != nil {
			matched.TotalRatings = *r.MatchedTotalRatings
		}
		if r.MatchedCompletedDeliveries != nil {
			matched.CompletedDeliveries = *r.MatchedCompletedDeliveries
		}
		v.Matched = &matched
	}
	return v
}

func (r *ListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	if listing.ID == uuid.Nil {
		listing.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(listing).Error
}

// GetByID loads a listing together with its applicants in application order.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	var listing model.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&listing).Error; err != nil {
		return nil, err
	}
	applicants, err := r.applicantIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	listing.Applicants = applicants[id]
	return &listing, nil
}

func (r *ListingRepository) GetView(ctx context.Context, id uuid.UUID) (*model.ListingView, error) {
	var rows []listingRow
	if err := r.db.WithContext(ctx).Raw(listingViewSelect+`WHERE l.id = ?`, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	views, err := r.withApplicants(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List returns listings matching the filter, newest first. An account filter matches
// listings the account posted or was matched on.
func (r *ListingRepository) List(ctx context.Context, filter model.ListingFilter) ([]model.ListingView, error) {
	query := listingViewSelect + `WHERE 1 = 1`
	var args []any

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query += ` AND l.status IN ?`
		args = append(args, statuses)
	}
	if filter.AccountID != nil {
		query += ` AND (l.poster_id = ? OR l.matched_account_id = ?)`
		args = append(args, *filter.AccountID, *filter.AccountID)
	}
	query += ` ORDER BY l.created_at DESC, l.id ASC`

	var rows []listingRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return r.withApplicants(ctx, rows)
}

func (r *ListingRepository) withApplicants(ctx context.Context, rows []listingRow) ([]model.ListingView, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	applicants, err := r.applicantIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]model.ListingView, 0, len(rows))
	for _, row := range rows {
		row.Applicants = applicants[row.ID]
		views = append(views, row.view())
	}
	return views, nil
}

func (r *ListingRepository) applicantIDs(ctx context.Context, listingIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	result := make(map[uuid.UUID][]uuid.UUID, len(listingIDs))
	if len(listingIDs) == 0 {
		return result, nil
	}
	var rows []model.ListingApplicant
	err := r.db.WithContext(ctx).
		Where("listing_id IN ?", listingIDs).
		Order("applied_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ListingID] = append(result[row.ListingID], row.AccountID)
	}
	return result, nil
}

// Applicants returns the public summaries of every applicant in application order.
func (r *ListingRepository) Applicants(ctx context.Context, listingID uuid.UUID) ([]model.AccountSummary, error) {
	var summaries []model.AccountSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.id, a.name, a.company_name, a.rating, a.total_ratings, a.completed_deliveries
		FROM listing_applicants la
		JOIN accounts a ON a.id = la.account_id
		WHERE la.listing_id = ?
		ORDER BY la.applied_at ASC
	`, listingID).Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// AddApplicant records an application only while the listing is active and not posted by
// the applicant. It reports false when that condition did not hold at write time. A repeat
// application surfaces as gorm.ErrDuplicatedKey.
func (r *ListingRepository) AddApplicant(ctx context.Context, listingID, accountID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		INSERT INTO listing_applicants (listing_id, account_id, applied_at)
		SELECT id, ?, ? FROM listings
		WHERE id = ? AND status = ? AND poster_id <> ?
	`, accountID, at, listingID, model.ListingStatusActive, accountID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Match moves an active listing to matched. The write only lands when the listing is
// still active, owned by posterID and accountID is among its applicants.
func (r *ListingRepository) Match(ctx context.Context, listingID, posterID, accountID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE listings
		SET status = ?, matched_account_id = ?, matched_at = ?, updated_at = ?
		WHERE id = ? AND status = ? AND poster_id = ?
		  AND EXISTS (
			SELECT 1 FROM listing_applicants la
			WHERE la.listing_id = listings.id AND la.account_id = ?
		  )
	`, model.ListingStatusMatched, accountID, at, at,
		listingID, model.ListingStatusActive, posterID, accountID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Complete moves a matched listing to completed and credits a delivery to both parties
// in the same transaction.
func (r *ListingRepository) Complete(ctx context.Context, listingID, posterID uuid.UUID, at time.Time) (bool, error) {
	completed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE listings
			SET status = ?, completed_at = ?, updated_at = ?
			WHERE id = ? AND status = ? AND poster_id = ?
		`, model.ListingStatusCompleted, at, at, listingID, model.ListingStatusMatched, posterID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var listing model.Listing
		if err := tx.Select("poster_id", "matched_account_id").Where("id = ?", listingID).Take(&listing).Error; err != nil {
			return err
		}
		parties := []uuid.UUID{listing.PosterID}
		if listing.MatchedAccountID != nil {
			parties = append(parties, *listing.MatchedAccountID)
		}
		if err := tx.Exec(`
			UPDATE accounts SET completed_deliveries = completed_deliveries + 1 WHERE id IN ?
		`, parties).Error; err != nil {
			return err
		}
		completed = true
		return nil
	})
	return completed, err
}

// Cancel withdraws an active listing owned by posterID.
func (r *ListingRepository) Cancel(ctx context.Context, listingID, posterID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE listings SET status = ?, updated_at = ?
		WHERE id = ? AND status = ? AND poster_id = ?
	`, model.ListingStatusCancelled, at, listingID, model.ListingStatusActive, posterID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Update applies changes to an active listing owned by posterID.
func (r *ListingRepository) Update(ctx context.Context, listingID, posterID uuid.UUID, changes model.ListingChanges, at time.Time) (bool, error) {
	values := map[string]any{"updated_at": at}
	if changes.Origin != nil {
		values["origin"] = *changes.Origin
	}
	if changes.Destination != nil {
		values["destination"] = *changes.Destination
	}
	if changes.Details != nil {
		values["details"] = *changes.Details
	}
	if changes.Payload != nil {
		values["payload"] = model.PayloadEnvelope{Payload: changes.Payload}
	}
	if changes.Contact != nil {
		values["contact"] = *changes.Contact
	}
	if changes.PriceAmount != nil {
		values["price_amount"] = *changes.PriceAmount
	}
	if changes.Currency != nil {
		values["price_currency"] = *changes.Currency
	}
	if changes.PickupDate != nil {
		values["pickup_date"] = *changes.PickupDate
	}
	if changes.DeliveryDate != nil {
		values["delivery_date"] = *changes.DeliveryDate
	}

	res := r.db.WithContext(ctx).
		Model(&model.Listing{}).
		Where("id = ? AND poster_id = ? AND status = ?", listingID, posterID, model.ListingStatusActive).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Delete removes an active listing owned by posterID along with its applications.
func (r *ListingRepository) Delete(ctx context.Context, listingID, posterID uuid.UUID) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			DELETE FROM listings WHERE id = ? AND poster_id = ? AND status = ?
		`, listingID, posterID, model.ListingStatusActive)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Exec(`DELETE FROM listing_applicants WHERE listing_id = ?`, listingID).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// CountCompleted counts completed listings where accountID was the poster or the matched party.
func (r *ListingRepository) CountCompleted(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM listings
		WHERE status = ? AND (poster_id = ? OR matched_account_id = ?)
	`, model.ListingStatusCompleted, accountID, accountID).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ListingRepository) CountByStatus(ctx context.Context, status model.ListingStatus) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM listings WHERE status = ?`, status).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// PopularRoutes ranks origin/destination pairs by completed listings.
func (r *ListingRepository) PopularRoutes(ctx context.Context, limit int) ([]model.RouteStat, error) {
	var routes []model.RouteStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT origin, destination, COUNT(*) AS completed
		FROM listings
		WHERE status = ?
		GROUP BY origin, destination
		ORDER BY completed DESC, origin ASC, destination ASC
		LIMIT ?
	`, model.ListingStatusCompleted, limit).Scan(&routes).Error
	if err != nil {
		return nil, err
	}
	return routes, nil
}
