package model

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email               string    `gorm:"size:320;not null;uniqueIndex:uq_accounts_email"`
	PasswordHash        string    `gorm:"not null"`
	Name                string    `gorm:"size:200;not null"`
	CompanyName         string    `gorm:"size:200"`
	CompanyType         string    `gorm:"size:64"`
	Phone               string    `gorm:"size:32"`
	Address             string
	Rating              float64 `gorm:"not null;default:0"`
	TotalRatings        int     `gorm:"not null;default:0"`
	CompletedDeliveries int     `gorm:"not null;default:0"`
	CreatedAt           time.Time
}

func (Account) TableName() string { return "accounts" }

// AccountSummary is the public slice of an account shown next to listings and applicants.
type AccountSummary struct {
	ID                  uuid.UUID
	Name                string
	CompanyName         string
	Rating              float64
	TotalRatings        int
	CompletedDeliveries int
}

type AccountProfile struct {
	Account             Account
	FiveStarRatings     int64
	SatisfactionRate    int
	CompletedDeliveries int64
	Self                bool
}

type Principal struct {
	AccountID uuid.UUID
	Email     string
}

func (p Principal) Is(id uuid.UUID) bool {
	return p.AccountID != uuid.Nil && p.AccountID == id
}
