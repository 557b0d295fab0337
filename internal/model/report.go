package model

import "time"

// ListingReport feeds the spreadsheet export of an account's listings.
type ListingReport struct {
	Account     Account
	Listings    []ListingView
	GeneratedAt time.Time
}

// CompletionCertificate feeds the delivery certificate of a completed listing.
type CompletionCertificate struct {
	Listing  ListingView
	Ratings  []RatingView
	IssuedAt time.Time
}
