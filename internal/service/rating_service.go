package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freightmarket/internal/model"
)

const maxCommentLength = 1000

type RatingStore interface {
	CreateAndAggregate(ctx context.Context, rating *model.Rating) (model.RatingStats, error)
	Exists(ctx context.Context, listingID, raterID uuid.UUID) (bool, error)
	Stats(ctx context.Context, rateeID uuid.UUID) (model.RatingStats, error)
	List(ctx context.Context, filter model.RatingFilter) ([]model.RatingView, error)
}

type ListingReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Listing, error)
}

type RatingService struct {
	ratings  RatingStore
	listings ListingReader
	now      func() time.Time
}

func NewRatingService(ratings RatingStore, listings ListingReader) *RatingService {
	return &RatingService{ratings: ratings, listings: listings, now: utcNow}
}

type SubmitRatingInput struct {
	Principal model.Principal
	ListingID uuid.UUID
	TargetID  uuid.UUID
	Score     int
	Comment   string
}

type SubmitRatingResult struct {
	Rating model.Rating
	Stats  model.RatingStats
}

type ListRatingsInput struct {
	RaterID *uuid.UUID
	RateeID *uuid.UUID
}

// Submit stores a rating from one party of a completed listing to the other and refreshes
// the ratee's aggregate.
func (s *RatingService) Submit(ctx context.Context, input SubmitRatingInput) (*SubmitRatingResult, error) {
	actor := input.Principal.AccountID
	if actor == uuid.Nil {
		return nil, ErrUnauthorized
	}
	comment := strings.TrimSpace(input.Comment)
	switch {
	case input.ListingID == uuid.Nil:
		return nil, fmt.Errorf("%w: listing id is required", ErrInvalidInput)
	case input.TargetID == uuid.Nil:
		return nil, fmt.Errorf("%w: target account id is required", ErrInvalidInput)
	case input.Score < model.MinScore || input.Score > model.MaxScore:
		return nil, fmt.Errorf("%w: score must be between %d and %d", ErrInvalidInput, model.MinScore, model.MaxScore)
	case utf8.RuneCountInString(comment) > maxCommentLength:
		return nil, fmt.Errorf("%w: comment is longer than %d characters", ErrInvalidInput, maxCommentLength)
	}

	listing, err := s.listings.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	if err := guardRate(listing, actor, input.TargetID); err != nil {
		return nil, err
	}

	rated, err := s.ratings.Exists(ctx, input.ListingID, actor)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, fmt.Errorf("%w: you already rated this listing", ErrConflict)
	}

	rating := model.Rating{
		ID:        uuid.New(),
		ListingID: input.ListingID,
		RaterID:   actor,
		RateeID:   input.TargetID,
		Score:     input.Score,
		Comment:   comment,
		CreatedAt: s.now(),
	}
	stats, err := s.ratings.CreateAndAggregate(ctx, &rating)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account", ErrNotFound)
		}
		return nil, conflict(err, "you already rated this listing")
	}
	return &SubmitRatingResult{Rating: rating, Stats: stats}, nil
}

func (s *RatingService) List(ctx context.Context, input ListRatingsInput) ([]model.RatingView, error) {
	if (input.RaterID == nil) == (input.RateeID == nil) {
		return nil, fmt.Errorf("%w: exactly one of toUserId or fromUserId is required", ErrInvalidInput)
	}
	return s.ratings.List(ctx, model.RatingFilter{RaterID: input.RaterID, RateeID: input.RateeID})
}
