package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingType string

const (
	ListingTypeCarrierOffer ListingType = "carrier-offer"
	ListingTypeCargoRequest ListingType = "cargo-request"
)

type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "active"
	ListingStatusMatched   ListingStatus = "matched"
	ListingStatusCompleted ListingStatus = "completed"
	ListingStatusCancelled ListingStatus = "cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s ListingStatus) Terminal() bool {
	return s == ListingStatusCompleted || s == ListingStatusCancelled
}

// CanTransition encodes the lifecycle graph: active -> matched -> completed, active -> cancelled.
func (s ListingStatus) CanTransition(to ListingStatus) bool {
	switch s {
	case ListingStatusActive:
		return to == ListingStatusMatched || to == ListingStatusCancelled
	case ListingStatusMatched:
		return to == ListingStatusCompleted
	default:
		return false
	}
}

type Listing struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PosterID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_listings_poster_id"`
	Type             ListingType     `gorm:"size:32;not null"`
	Origin           string          `gorm:"not null"`
	Destination      string          `gorm:"not null"`
	Details          string
	Payload          PayloadEnvelope `gorm:"type:text"`
	Contact          string          `gorm:"not null"`
	PriceAmount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PriceCurrency    string          `gorm:"size:8;not null"`
	PickupDate       time.Time
	DeliveryDate     time.Time
	Status           ListingStatus `gorm:"size:16;not null;index:idx_listings_status"`
	MatchedAccountID *uuid.UUID    `gorm:"type:uuid"`
	MatchedAt        *time.Time
	CompletedAt      *time.Time
	CreatedAt        time.Time `gorm:"index:idx_listings_created_at"`
	UpdatedAt        time.Time
	Applicants       []uuid.UUID `gorm:"-"`
}

func (Listing) TableName() string { return "listings" }

func (l *Listing) HasApplicant(id uuid.UUID) bool {
	for _, applicant := range l.Applicants {
		if applicant == id {
			return true
		}
	}
	return false
}

// IsParty reports whether id is the poster or the matched counterparty.
func (l *Listing) IsParty(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}
	return l.PosterID == id || (l.MatchedAccountID != nil && *l.MatchedAccountID == id)
}

// Counterparty returns the other party of a matched listing relative to id.
func (l *Listing) Counterparty(id uuid.UUID) (uuid.UUID, bool) {
	if l.MatchedAccountID == nil {
		return uuid.Nil, false
	}
	switch id {
	case l.PosterID:
		return *l.MatchedAccountID, true
	case *l.MatchedAccountID:
		return l.PosterID, true
	}
	return uuid.Nil, false
}

type ListingApplicant struct {
	ListingID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AppliedAt time.Time `gorm:"not null"`
}

func (ListingApplicant) TableName() string { return "listing_applicants" }

type ListingView struct {
	Listing Listing
	Poster  AccountSummary
	Matched *AccountSummary
}

type ListingFilter struct {
	AccountID *uuid.UUID
	Statuses  []ListingStatus
}

type ListingChanges struct {
	Origin       *string
	Destination  *string
	Details      *string
	Payload      Payload
	Contact      *string
	PriceAmount  *decimal.Decimal
	Currency     *string
	PickupDate   *time.Time
	DeliveryDate *time.Time
}

func (c ListingChanges) Empty() bool {
	return c.Origin == nil && c.Destination == nil && c.Details == nil && c.Payload == nil &&
		c.Contact == nil && c.PriceAmount == nil && c.Currency == nil &&
		c.PickupDate == nil && c.DeliveryDate == nil
}

var ErrUnknownStatus = errors.New("unknown listing status")

var statusAliases = map[string]ListingStatus{
	"active":     ListingStatusActive,
	"aktif":      ListingStatusActive,
	"matched":    ListingStatusMatched,
	"eşleşti":    ListingStatusMatched,
	"completed":  ListingStatusCompleted,
	"tamamlandı": ListingStatusCompleted,
	"cancelled":  ListingStatusCancelled,
	"iptal":      ListingStatusCancelled,
}

// ParseStatusFilter accepts a single status or a comma separated compound token such as
// "active,matched". Turkish tokens used by the web client are accepted as aliases.
// An empty token yields the default filter: active listings only.
func ParseStatusFilter(raw string) ([]ListingStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []ListingStatus{ListingStatusActive}, nil
	}
	parts := strings.Split(raw, ",")
	result := make([]ListingStatus, 0, len(parts))
	seen := make(map[ListingStatus]struct{}, len(parts))
	for _, part := range parts {
		status, ok := statusAliases[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, part)
		}
		if _, dup := seen[status]; dup {
			continue
		}
		seen[status] = struct{}{}
		result = append(result, status)
	}
	return result, nil
}

var typeAliases = map[string]ListingType{
	"carrier-offer": ListingTypeCarrierOffer,
	"taşıyıcı":      ListingTypeCarrierOffer,
	"cargo-request": ListingTypeCargoRequest,
	"mal_sahibi":    ListingTypeCargoRequest,
}

func ParseListingType(raw string) (ListingType, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// Payload is the type specific part of a listing. Only VehicleDetails and CargoDetails
// implement it, so a listing carries exactly one of them.
type Payload interface {
	ListingType() ListingType
}

type VehicleDetails struct {
	VehicleType       string   `json:"vehicleType"`
	Capacity          string   `json:"capacity"`
	Features          []string `json:"features,omitempty"`
	BodyType          string   `json:"bodyType"`
	ReeferTemperature string   `json:"reeferTemperature,omitempty"`
	OverhangSize      string   `json:"overhangSize,omitempty"`
	LashingCapacity   string   `json:"lashingCapacity,omitempty"`
	RampHeight        string   `json:"rampHeight,omitempty"`
	ExtraFeatures     []string `json:"extraFeatures,omitempty"`
}

func (VehicleDetails) ListingType() ListingType { return ListingTypeCarrierOffer }

type CargoDetails struct {
	CargoType           string   `json:"cargoType"`
	Quantity            string   `json:"quantity"`
	Requirements        []string `json:"requirements,omitempty"`
	Length              string   `json:"length,omitempty"`
	Width               string   `json:"width,omitempty"`
	Height              string   `json:"height,omitempty"`
	Weight              string   `json:"weight,omitempty"`
	Packaging           string   `json:"packaging,omitempty"`
	Hazardous           bool     `json:"hazardous"`
	UNCode              string   `json:"unCode,omitempty"`
	Temperature         string   `json:"temperature,omitempty"`
	SpecialRequirements []string `json:"specialRequirements,omitempty"`
}

func (CargoDetails) ListingType() ListingType { return ListingTypeCargoRequest }

// PayloadEnvelope persists a Payload as a JSON document in a single column.
type PayloadEnvelope struct {
	Payload Payload
}

type payloadDocument struct {
	Vehicle *VehicleDetails `json:"vehicle,omitempty"`
	Cargo   *CargoDetails   `json:"cargo,omitempty"`
}

func (e PayloadEnvelope) Vehicle() (VehicleDetails, bool) {
	v, ok := e.Payload.(VehicleDetails)
	return v, ok
}

func (e PayloadEnvelope) Cargo() (CargoDetails, bool) {
	c, ok := e.Payload.(CargoDetails)
	return c, ok
}

func (e PayloadEnvelope) Value() (driver.Value, error) {
	var doc payloadDocument
	switch p := e.Payload.(type) {
	case nil:
		return nil, nil
	case VehicleDetails:
		doc.Vehicle = &p
	case CargoDetails:
		doc.Cargo = &p
	default:
		return nil, fmt.Errorf("unsupported payload %T", e.Payload)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (e *PayloadEnvelope) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		e.Payload = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into payload", src)
	}
	if len(raw) == 0 {
		e.Payload = nil
		return nil
	}

	var doc payloadDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	switch {
	case doc.Vehicle != nil && doc.Cargo != nil:
		return errors.New("payload carries both vehicle and cargo details")
	case doc.Vehicle != nil:
		e.Payload = *doc.Vehicle
	case doc.Cargo != nil:
		e.Payload = *doc.Cargo
	default:
		e.Payload = nil
	}
	return nil
}
