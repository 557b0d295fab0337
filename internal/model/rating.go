package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	MinScore = 1
	MaxScore = 5
)

type Rating struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_listing_rater,priority:1"`
	RaterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_listing_rater,priority:2"`
	RateeID   uuid.UUID `gorm:"type:uuid;not null;index:idx_ratings_ratee_id"`
	Score     int       `gorm:"not null;check:score >= 1 AND score <= 5"`
	Comment   string
	CreatedAt time.Time
}

func (Rating) TableName() string { return "ratings" }

type RatingView struct {
	Rating             Rating
	RaterName          string
	RaterCompany       string
	RateeName          string
	RateeCompany       string
	ListingOrigin      string
	ListingDestination string
	ListingType        ListingType
}

type RatingFilter struct {
	RaterID *uuid.UUID
	RateeID *uuid.UUID
}

// RatingStats is the raw aggregate over every rating an account has received.
type RatingStats struct {
	Total     int64
	Sum       int64
	FiveStar  int64
	Satisfied int64
}

// Average is the mean score rounded to one decimal place, zero without ratings.
func (s RatingStats) Average() float64 {
	if s.Total == 0 {
		return 0
	}
	return math.Round(float64(s.Sum)*10/float64(s.Total)) / 10
}

// SatisfactionRate is the share of ratings scoring 4 or 5, as a whole percentage.
func (s RatingStats) SatisfactionRate() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Satisfied) * 100 / float64(s.Total)))
}
