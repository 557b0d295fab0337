package service

import (
	"context"

	"github.com/nurpe/freightmarket/internal/model"
)

const popularRouteLimit = 5

type ListingStatsReader interface {
	CountByStatus(ctx context.Context, status model.ListingStatus) (int64, error)
	PopularRoutes(ctx context.Context, limit int) ([]model.RouteStat, error)
}

type AccountCounter interface {
	Count(ctx context.Context) (int64, error)
}

type StatsService struct {
	listings ListingStatsReader
	accounts AccountCounter
}

func NewStatsService(listings ListingStatsReader, accounts AccountCounter) *StatsService {
	return &StatsService{listings: listings, accounts: accounts}
}

func (s *StatsService) Platform(ctx context.Context) (*model.PlatformStats, error) {
	active, err := s.listings.CountByStatus(ctx, model.ListingStatusActive)
	if err != nil {
		return nil, err
	}
	completed, err := s.listings.CountByStatus(ctx, model.ListingStatusCompleted)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.Count(ctx)
	if err != nil {
		return nil, err
	}
	routes, err := s.listings.PopularRoutes(ctx, popularRouteLimit)
	if err != nil {
		return nil, err
	}
	return &model.PlatformStats{
		ActiveListings:    active,
		CompletedListings: completed,
		Accounts:          accounts,
		PopularRoutes:     routes,
	}, nil
}
