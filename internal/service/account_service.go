package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/freightmarket/internal/auth"
	"github.com/nurpe/freightmarket/internal/model"
)

const minPasswordLength = 6

type AccountStore interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
}

type CompletionCounter interface {
	CountCompleted(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type RatingStatsReader interface {
	Stats(ctx context.Context, rateeID uuid.UUID) (model.RatingStats, error)
}

type TokenIssuer interface {
	Issue(accountID uuid.UUID, email string) (string, time.Time, error)
}

type AccountService struct {
	accounts  AccountStore
	completed CompletionCounter
	ratings   RatingStatsReader
	tokens    TokenIssuer
	now       func() time.Time
}

func NewAccountService(accounts AccountStore, completed CompletionCounter, ratings RatingStatsReader, tokens TokenIssuer) *AccountService {
	return &AccountService{
		accounts:  accounts,
		completed: completed,
		ratings:   ratings,
		tokens:    tokens,
		now:       utcNow,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	CompanyName string
	CompanyType string
	Phone       string
	Address     string
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	Profile   *model.AccountProfile
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	case len(input.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := &model.Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CompanyName:  strings.TrimSpace(input.CompanyName),
		CompanyType:  strings.TrimSpace(input.CompanyType),
		Phone:        strings.TrimSpace(input.Phone),
		Address:      strings.TrimSpace(input.Address),
		CreatedAt:    s.now(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, conflict(err, "email is already registered")
	}
	return s.session(ctx, account)
}

// Login answers both an unknown email and a wrong password with the same error.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return nil, err
	}
	return s.session(ctx, account)
}

// session carries the same profile view GET /auth/me returns.
func (s *AccountService) session(ctx context.Context, account *model.Account) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx, model.Principal{AccountID: account.ID, Email: account.Email}, account.ID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Profile:   profile,
	}, nil
}

// Profile assembles the reputation view of an account. Private fields are only meant for
// the account itself, which Self records.
func (s *AccountService) Profile(ctx context.Context, requester model.Principal, id uuid.UUID) (*model.AccountProfile, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "account")
	}
	stats, err := s.ratings.Stats(ctx, id)
	if err != nil {
		return nil, err
	}
	completed, err := s.completed.CountCompleted(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.AccountProfile{
		Account:             *account,
		FiveStarRatings:     stats.FiveStar,
		SatisfactionRate:    stats.SatisfactionRate(),
		CompletedDeliveries: completed,
		Self:                requester.Is(id),
	}, nil
}
