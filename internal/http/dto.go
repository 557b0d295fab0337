package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/freightmarket/internal/model"
	"github.com/nurpe/freightmarket/internal/service"
)

type accountSummaryResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	CompanyName         string    `json:"companyName"`
	Rating              float64   `json:"rating"`
	TotalRatings        int       `json:"totalRatings"`
	CompletedDeliveries int       `json:"completedDeliveries"`
}

func toAccountSummary(s model.AccountSummary) accountSummaryResponse {
	return accountSummaryResponse{
		ID:                  s.ID,
		Name:                s.Name,
		CompanyName:         s.CompanyName,
		Rating:              s.Rating,
		TotalRatings:        s.TotalRatings,
		CompletedDeliveries: s.CompletedDeliveries,
	}
}

type priceResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type listingResponse struct {
	ID               uuid.UUID               `json:"id"`
	Type             model.ListingType       `json:"type"`
	Status           model.ListingStatus     `json:"status"`
	Origin           string                  `json:"origin"`
	Destination      string                  `json:"destination"`
	Details          string                  `json:"details"`
	Vehicle          *model.VehicleDetails   `json:"vehicle,omitempty"`
	Cargo            *model.CargoDetails     `json:"cargo,omitempty"`
	Contact          string                  `json:"contact"`
	Price            priceResponse           `json:"price"`
	PickupDate       time.Time               `json:"pickupDate"`
	DeliveryDate     time.Time               `json:"deliveryDate"`
	PosterID         uuid.UUID               `json:"posterId"`
	Poster           accountSummaryResponse  `json:"poster"`
	Applicants       []uuid.UUID             `json:"applicants"`
	MatchedAccountID *uuid.UUID              `json:"matchedAccountId"`
	Matched          *accountSummaryResponse `json:"matched,omitempty"`
	MatchedAt        *time.Time              `json:"matchedAt,omitempty"`
	CompletedAt      *time.Time              `json:"completedAt,omitempty"`
	CreatedAt        time.Time               `json:"createdAt"`
	UpdatedAt        time.Time               `json:"updatedAt"`
}

func toListingResponse(v model.ListingView) listingResponse {
	l := v.Listing
	resp := listingResponse{
		ID:               l.ID,
		Type:             l.Type,
		Status:           l.Status,
		Origin:           l.Origin,
		Destination:      l.Destination,
		Details:          l.Details,
		Contact:          l.Contact,
		Price:            priceResponse{Amount: l.PriceAmount, Currency: l.PriceCurrency},
		PickupDate:       l.PickupDate,
		DeliveryDate:     l.DeliveryDate,
		PosterID:         l.PosterID,
		Poster:           toAccountSummary(v.Poster),
		Applicants:       l.Applicants,
		MatchedAccountID: l.MatchedAccountID,
		MatchedAt:        l.MatchedAt,
		CompletedAt:      l.CompletedAt,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
	if resp.Applicants == nil {
		resp.Applicants = []uuid.UUID{}
	}
	if vehicle, ok := l.Payload.Vehicle(); ok {
		resp.Vehicle = &vehicle
	}
	if cargo, ok := l.Payload.Cargo(); ok {
		resp.Cargo = &cargo
	}
	if v.Matched != nil {
		matched := toAccountSummary(*v.Matched)
		resp.Matched = &matched
	}
	return resp
}

func toListingResponses(views []model.ListingView) []listingResponse {
	out := make([]listingResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toListingResponse(v))
	}
	return out
}

// profileResponse leaves email, phone and address nil for anyone but the account itself,
// so the keys are absent from the JSON.
type profileResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	CompanyName         string    `json:"companyName"`
	CompanyType         string    `json:"companyType"`
	CreatedAt           time.Time `json:"createdAt"`
	Rating              float64   `json:"rating"`
	TotalRatings        int       `json:"totalRatings"`
	FiveStarRatings     int64     `json:"fiveStarRatings"`
	SatisfactionRate    int       `json:"satisfactionRate"`
	CompletedDeliveries int64     `json:"completedDeliveries"`
	Email               *string   `json:"email,omitempty"`
	Phone               *string   `json:"phone,omitempty"`
	Address             *string   `json:"address,omitempty"`
}

func toProfileResponse(p model.AccountProfile) profileResponse {
	a := p.Account
	resp := profileResponse{
		ID:                  a.ID,
		Name:                a.Name,
		CompanyName:         a.CompanyName,
		CompanyType:         a.CompanyType,
		CreatedAt:           a.CreatedAt,
		Rating:              a.Rating,
		TotalRatings:        a.TotalRatings,
		FiveStarRatings:     p.FiveStarRatings,
		SatisfactionRate:    p.SatisfactionRate,
		CompletedDeliveries: p.CompletedDeliveries,
	}
	if p.Self {
		resp.Email = &a.Email
		resp.Phone = &a.Phone
		resp.Address = &a.Address
	}
	return resp
}

type sessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	Account   profileResponse `json:"account"`
}

type partyResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"companyName"`
}

type ratedListingResponse struct {
	ID          uuid.UUID         `json:"id"`
	Origin      string            `json:"origin"`
	Destination string            `json:"destination"`
	Type        model.ListingType `json:"type"`
}

type ratingResponse struct {
	ID        uuid.UUID             `json:"id"`
	ListingID uuid.UUID             `json:"listingId"`
	RaterID   uuid.UUID             `json:"fromUserId"`
	RateeID   uuid.UUID             `json:"toUserId"`
	Score     int                   `json:"score"`
	Comment   string                `json:"comment"`
	CreatedAt time.Time             `json:"createdAt"`
	Rater     *partyResponse        `json:"fromUser,omitempty"`
	Ratee     *partyResponse        `json:"toUser,omitempty"`
	Listing   *ratedListingResponse `json:"listing,omitempty"`
}

func toRatingResponse(r model.Rating) ratingResponse {
	return ratingResponse{
		ID:        r.ID,
		ListingID: r.ListingID,
		RaterID:   r.RaterID,
		RateeID:   r.RateeID,
		Score:     r.Score,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func toRatingViewResponses(views []model.RatingView) []ratingResponse {
	out := make([]ratingResponse, 0, len(views))
	for _, v := range views {
		resp := toRatingResponse(v.Rating)
		resp.Rater = &partyResponse{ID: v.Rating.RaterID, Name: v.RaterName, CompanyName: v.RaterCompany}
		resp.Ratee = &partyResponse{ID: v.Rating.RateeID, Name: v.RateeName, CompanyName: v.RateeCompany}
		resp.Listing = &ratedListingResponse{
			ID:          v.Rating.ListingID,
			Origin:      v.ListingOrigin,
			Destination: v.ListingDestination,
			Type:        v.ListingType,
		}
		out = append(out, resp)
	}
	return out
}

type submitRatingResponse struct {
	Rating ratingResponse `json:"rating"`
	Ratee  struct {
		Rating       float64 `json:"rating"`
		TotalRatings int64   `json:"totalRatings"`
	} `json:"ratee"`
}

func toSubmitRatingResponse(result *service.SubmitRatingResult) submitRatingResponse {
	var resp submitRatingResponse
	resp.Rating = toRatingResponse(result.Rating)
	resp.Ratee.Rating = result.Stats.Average()
	resp.Ratee.TotalRatings = result.Stats.Total
	return resp
}

type routeResponse struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Completed   int64  `json:"completed"`
}

type statsResponse struct {
	ActiveListings    int64           `json:"activeListings"`
	CompletedListings int64           `json:"completedListings"`
	Accounts          int64           `json:"accounts"`
	PopularRoutes     []routeResponse `json:"popularRoutes"`
}

func toStatsResponse(s model.PlatformStats) statsResponse {
	resp := statsResponse{
		ActiveListings:    s.ActiveListings,
		CompletedListings: s.CompletedListings,
		Accounts:          s.Accounts,
		PopularRoutes:     make([]routeResponse, 0, len(s.PopularRoutes)),
	}
	for _, r := range s.PopularRoutes {
		resp.PopularRoutes = append(resp.PopularRoutes, routeResponse{
			Origin:      r.Origin,
			Destination: r.Destination,
			Completed:   r.Completed,
		})
	}
	return resp
}
