package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/freightmarket/internal/model"
)

type ExcelGenerator interface {
	Generate(report model.ListingReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(certificate model.CompletionCertificate) ([]byte, error)
}

type ExportListingSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Listing, error)
	GetView(ctx context.Context, id uuid.UUID) (*model.ListingView, error)
	List(ctx context.Context, filter model.ListingFilter) ([]model.ListingView, error)
}

type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
}

type RatingLister interface {
	List(ctx context.Context, filter model.RatingFilter) ([]model.RatingView, error)
}

type ExportService struct {
	accounts AccountReader
	listings ExportListingSource
	ratings  RatingLister
	excel    ExcelGenerator
	pdf      PDFGenerator
	now      func() time.Time
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewExportService(accounts AccountReader, listings ExportListingSource, ratings RatingLister, excel ExcelGenerator, pdf PDFGenerator) *ExportService {
	return &ExportService{
		accounts: accounts,
		listings: listings,
		ratings:  ratings,
		excel:    excel,
		pdf:      pdf,
		now:      utcNow,
	}
}

// ExportListings builds a workbook with every listing the caller posted or was matched on,
// whatever its status.
func (s *ExportService) ExportListings(ctx context.Context, principal model.Principal) (*ExportResult, error) {
	account, err := s.accounts.GetByID(ctx, principal.AccountID)
	if err != nil {
		return nil, notFound(err, "account")
	}
	accountID := account.ID
	listings, err := s.listings.List(ctx, model.ListingFilter{AccountID: &accountID})
	if err != nil {
		return nil, err
	}

	now := s.now()
	content, err := s.excel.Generate(model.ListingReport{
		Account:     *account,
		Listings:    listings,
		GeneratedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("generate workbook: %w", err)
	}
	return &ExportResult{
		FileName: fmt.Sprintf("ilanlar_%s.xlsx", now.Format("20060102")),
		Content:  content,
	}, nil
}

func (s *ExportService) Certificate(ctx context.Context, principal model.Principal, listingID uuid.UUID) (*ExportResult, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	if err := guardCertificate(listing, principal.AccountID); err != nil {
		return nil, err
	}

	view, err := s.listings.GetView(ctx, listingID)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	parties := []uuid.UUID{listing.PosterID}
	if listing.MatchedAccountID != nil {
		parties = append(parties, *listing.MatchedAccountID)
	}
	var ratings []model.RatingView
	for _, party := range parties {
		id := party
		received, err := s.ratings.List(ctx, model.RatingFilter{RateeID: &id})
		if err != nil {
			return nil, err
		}
		for _, r := range received {
			if r.Rating.ListingID == listingID {
				ratings = append(ratings, r)
			}
		}
	}

	content, err := s.pdf.Generate(model.CompletionCertificate{
		Listing:  *view,
		Ratings:  ratings,
		IssuedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate certificate: %w", err)
	}
	return &ExportResult{
		FileName: fmt.Sprintf("teslimat_%s.pdf", listingID.String()[:8]),
		Content:  content,
	}, nil
}
