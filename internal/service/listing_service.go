package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/freightmarket/internal/config"
	"github.com/nurpe/freightmarket/internal/model"
)

type ListingStore interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Listing, error)
	GetView(ctx context.Context, id uuid.UUID) (*model.ListingView, error)
	List(ctx context.Context, filter model.ListingFilter) ([]model.ListingView, error)
	Applicants(ctx context.Context, listingID uuid.UUID) ([]model.AccountSummary, error)
	AddApplicant(ctx context.Context, listingID, accountID uuid.UUID, at time.Time) (bool, error)
	Match(ctx context.Context, listingID, posterID, accountID uuid.UUID, at time.Time) (bool, error)
	Complete(ctx context.Context, listingID, posterID uuid.UUID, at time.Time) (bool, error)
	Cancel(ctx context.Context, listingID, posterID uuid.UUID, at time.Time) (bool, error)
	Update(ctx context.Context, listingID, posterID uuid.UUID, changes model.ListingChanges, at time.Time) (bool, error)
	Delete(ctx context.Context, listingID, posterID uuid.UUID) (bool, error)
}

type ListingService struct {
	listings ListingStore
	currency string
	now      func() time.Time
}

func NewListingService(listings ListingStore, cfg *config.Config) *ListingService {
	return &ListingService{
		listings: listings,
		currency: cfg.Listings.DefaultCurrency,
		now:      utcNow,
	}
}

type CreateListingInput struct {
	Principal    model.Principal
	Type         model.ListingType
	Origin       string
	Destination  string
	Details      string
	Payload      model.Payload
	Contact      string
	PriceAmount  decimal.Decimal
	Currency     string
	PickupDate   time.Time
	DeliveryDate time.Time
}

type ListListingsInput struct {
	AccountID *uuid.UUID
	Status    string
}

type UpdateListingInput struct {
	Principal model.Principal
	ListingID uuid.UUID
	Changes   model.ListingChanges
}

func (s *ListingService) Create(ctx context.Context, input CreateListingInput) (*model.ListingView, error) {
	if input.Principal.AccountID == uuid.Nil {
		return nil, ErrUnauthorized
	}

	origin := strings.TrimSpace(input.Origin)
	destination := strings.TrimSpace(input.Destination)
	contact := strings.TrimSpace(input.Contact)
	switch {
	case input.Type != model.ListingTypeCarrierOffer && input.Type != model.ListingTypeCargoRequest:
		return nil, fmt.Errorf("%w: unknown listing type %q", ErrInvalidInput, input.Type)
	case origin == "" || destination == "":
		return nil, fmt.Errorf("%w: origin and destination are required", ErrInvalidInput)
	case contact == "":
		return nil, fmt.Errorf("%w: contact is required", ErrInvalidInput)
	case input.Payload == nil:
		return nil, fmt.Errorf("%w: %s details are required", ErrInvalidInput, payloadLabel(input.Type))
	case input.Payload.ListingType() != input.Type:
		return nil, fmt.Errorf("%w: %s listings carry %s details", ErrInvalidInput, input.Type, payloadLabel(input.Type))
	case input.PriceAmount.IsNegative():
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}
	if err := validateDates(input.PickupDate, input.DeliveryDate); err != nil {
		return nil, err
	}

	currency := strings.TrimSpace(input.Currency)
	if currency == "" {
		currency = s.currency
	}

	now := s.now()
	listing := &model.Listing{
		ID:            uuid.New(),
		PosterID:      input.Principal.AccountID,
		Type:          input.Type,
		Origin:        origin,
		Destination:   destination,
		Details:       strings.TrimSpace(input.Details),
		Payload:       model.PayloadEnvelope{Payload: input.Payload},
		Contact:       contact,
		PriceAmount:   input.PriceAmount,
		PriceCurrency: currency,
		PickupDate:    input.PickupDate.UTC(),
		DeliveryDate:  input.DeliveryDate.UTC(),
		Status:        model.ListingStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return s.Get(ctx, listing.ID)
}

func (s *ListingService) Get(ctx context.Context, id uuid.UUID) (*model.ListingView, error) {
	view, err := s.listings.GetView(ctx, id)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	return view, nil
}

func (s *ListingService) List(ctx context.Context, input ListListingsInput) ([]model.ListingView, error) {
	statuses, err := model.ParseStatusFilter(input.Status)
	if err != nil {
		if errors.Is(err, model.ErrUnknownStatus) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}
	return s.listings.List(ctx, model.ListingFilter{AccountID: input.AccountID, Statuses: statuses})
}

func (s *ListingService) Applicants(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.AccountSummary, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guardApplicants(listing, principal.AccountID); err != nil {
		return nil, err
	}
	return s.listings.Applicants(ctx, id)
}

func (s *ListingService) Apply(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ListingView, error) {
	actor := principal.AccountID
	guard := func(l *model.Listing) error { return guardApply(l, actor) }

	if err := s.check(ctx, id, guard); err != nil {
		return nil, err
	}
	applied, err := s.listings.AddApplicant(ctx, id, actor, s.now())
	if err != nil {
		return nil, conflict(err, "already applied to this listing")
	}
	if !applied {
		return nil, s.classify(ctx, id, guard)
	}
	return s.Get(ctx, id)
}

func (s *ListingService) Match(ctx context.Context, principal model.Principal, id, target uuid.UUID) (*model.ListingView, error) {
	actor := principal.AccountID
	guard := func(l *model.Listing) error { return guardMatch(l, actor, target) }

	if err := s.check(ctx, id, guard); err != nil {
		return nil, err
	}
	matched, err := s.listings.Match(ctx, id, actor, target, s.now())
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, s.classify(ctx, id, guard)
	}
	return s.Get(ctx, id)
}

func (s *ListingService) Complete(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ListingView, error) {
	actor := principal.AccountID
	guard := func(l *model.Listing) error { return guardComplete(l, actor) }

	if err := s.check(ctx, id, guard); err != nil {
		return nil, err
	}
	completed, err := s.listings.Complete(ctx, id, actor, s.now())
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, s.classify(ctx, id, guard)
	}
	return s.Get(ctx, id)
}

func (s *ListingService) Cancel(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.ListingView, error) {
	actor := principal.AccountID
	guard := func(l *model.Listing) error { return guardCancel(l, actor) }

	if err := s.check(ctx, id, guard); err != nil {
		return nil, err
	}
	cancelled, err := s.listings.Cancel(ctx, id, actor, s.now())
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, s.classify(ctx, id, guard)
	}
	return s.Get(ctx, id)
}

func (s *ListingService) Update(ctx context.Context, input UpdateListingInput) (*model.ListingView, error) {
	actor := input.Principal.AccountID
	guard := func(l *model.Listing) error { return guardUpdate(l, actor) }

	listing, err := s.load(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if err := guard(listing); err != nil {
		return nil, err
	}
	changes, err := normalizeChanges(listing, input.Changes)
	if err != nil {
		return nil, err
	}

	updated, err := s.listings.Update(ctx, input.ListingID, actor, changes, s.now())
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, s.classify(ctx, input.ListingID, guard)
	}
	return s.Get(ctx, input.ListingID)
}

func (s *ListingService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	actor := principal.AccountID
	guard := func(l *model.Listing) error { return guardDelete(l, actor) }

	if err := s.check(ctx, id, guard); err != nil {
		return err
	}
	deleted, err := s.listings.Delete(ctx, id, actor)
	if err != nil {
		return err
	}
	if !deleted {
		return s.classify(ctx, id, guard)
	}
	return nil
}

func (s *ListingService) load(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "listing")
	}
	return listing, nil
}

func (s *ListingService) check(ctx context.Context, id uuid.UUID, guard func(*model.Listing) error) error {
	listing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	return guard(listing)
}

// classify explains why a conditional write did not land. The guard passed on the read
// before the write, so the listing changed in between.
func (s *ListingService) classify(ctx context.Context, id uuid.UUID, guard func(*model.Listing) error) error {
	if err := s.check(ctx, id, guard); err != nil {
		return err
	}
	return fmt.Errorf("%w: listing changed concurrently", ErrInvalidState)
}

func normalizeChanges(listing *model.Listing, changes model.ListingChanges) (model.ListingChanges, error) {
	if changes.Empty() {
		return changes, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	trimmed := func(field string, value *string, required bool) (*string, error) {
		if value == nil {
			return nil, nil
		}
		v := strings.TrimSpace(*value)
		if required && v == "" {
			return nil, fmt.Errorf("%w: %s cannot be empty", ErrInvalidInput, field)
		}
		return &v, nil
	}

	var err error
	if changes.Origin, err = trimmed("origin", changes.Origin, true); err != nil {
		return changes, err
	}
	if changes.Destination, err = trimmed("destination", changes.Destination, true); err != nil {
		return changes, err
	}
	if changes.Contact, err = trimmed("contact", changes.Contact, true); err != nil {
		return changes, err
	}
	if changes.Currency, err = trimmed("currency", changes.Currency, true); err != nil {
		return changes, err
	}
	if changes.Details, err = trimmed("details", changes.Details, false); err != nil {
		return changes, err
	}

	if changes.Payload != nil && changes.Payload.ListingType() != listing.Type {
		return changes, fmt.Errorf("%w: %s listings carry %s details", ErrInvalidInput, listing.Type, payloadLabel(listing.Type))
	}
	if changes.PriceAmount != nil && changes.PriceAmount.IsNegative() {
		return changes, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}

	pickup, delivery := listing.PickupDate, listing.DeliveryDate
	if changes.PickupDate != nil {
		v := changes.PickupDate.UTC()
		changes.PickupDate, pickup = &v, v
	}
	if changes.DeliveryDate != nil {
		v := changes.DeliveryDate.UTC()
		changes.DeliveryDate, delivery = &v, v
	}
	if err := validateDates(pickup, delivery); err != nil {
		return changes, err
	}
	return changes, nil
}

func validateDates(pickup, delivery time.Time) error {
	if pickup.IsZero() || delivery.IsZero() {
		return fmt.Errorf("%w: pickup and delivery dates are required", ErrInvalidInput)
	}
	if pickup.After(delivery) {
		return fmt.Errorf("%w: pickup date must be before or equal to delivery date", ErrInvalidInput)
	}
	return nil
}

func payloadLabel(t model.ListingType) string {
	if t == model.ListingTypeCarrierOffer {
		return "vehicle"
	}
	return "cargo"
}

func utcNow() time.Time {
	return time.Now().UTC()
}
