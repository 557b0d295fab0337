package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/freightmarket/internal/auth"
	"github.com/nurpe/freightmarket/internal/config"
	"github.com/nurpe/freightmarket/internal/model"
	"github.com/nurpe/freightmarket/internal/repository"
	"github.com/nurpe/freightmarket/internal/testutil"
)

type env struct {
	accountRepo *repository.AccountRepository
	listingRepo *repository.ListingRepository
	ratingRepo  *repository.RatingRepository
	listings    *ListingService
	ratings     *RatingService
	accounts    *AccountService
	stats       *StatsService
	clock       *testutil.Clock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	database := testutil.NewDB(t)
	cfg := &config.Config{Listings: config.ListingsConfig{DefaultCurrency: "TL"}}
	clock := testutil.NewClock()

	e := &env{
		accountRepo: repository.NewAccountRepository(database),
		listingRepo: repository.NewListingRepository(database),
		ratingRepo:  repository.NewRatingRepository(database),
		clock:       clock,
	}
	e.listings = NewListingService(e.listingRepo, cfg)
	e.listings.now = clock.Now
	e.ratings = NewRatingService(e.ratingRepo, e.listingRepo)
	e.ratings.now = clock.Now
	e.accounts = NewAccountService(e.accountRepo, e.listingRepo, e.ratingRepo, auth.NewIssuer("test-secret", time.Hour))
	e.accounts.now = clock.Now
	e.stats = NewStatsService(e.listingRepo, e.accountRepo)
	return e
}

func (e *env) register(t *testing.T, name string) model.Principal {
	t.Helper()
	session, err := e.accounts.Register(context.Background(), RegisterInput{
		Email:       name + "@example.com",
		Password:    "secret123",
		Name:        name,
		CompanyName: name + " Nakliyat",
	})
	require.NoError(t, err)
	return model.Principal{AccountID: session.Profile.Account.ID, Email: session.Profile.Account.Email}
}

func cargoInput(p model.Principal, origin, destination string) CreateListingInput {
	pickup := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	return CreateListingInput{
		Principal:    p,
		Type:         model.ListingTypeCargoRequest,
		Origin:       origin,
		Destination:  destination,
		Payload:      model.CargoDetails{CargoType: "palet", Quantity: "12"},
		Contact:      "0555 111 22 33",
		PriceAmount:  decimal.NewFromInt(12000),
		PickupDate:   pickup,
		DeliveryDate: pickup.Add(24 * time.Hour),
	}
}

func (e *env) listing(t *testing.T, p model.Principal) uuid.UUID {
	t.Helper()
	view, err := e.listings.Create(context.Background(), cargoInput(p, "İstanbul", "Ankara"))
	require.NoError(t, err)
	return view.Listing.ID
}

// completed drives a fresh listing by poster through apply, match and complete with carrier.
func (e *env) completed(t *testing.T, poster, carrier model.Principal) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id := e.listing(t, poster)
	_, err := e.listings.Apply(ctx, carrier, id)
	require.NoError(t, err)
	_, err = e.listings.Match(ctx, poster, id, carrier.AccountID)
	require.NoError(t, err)
	_, err = e.listings.Complete(ctx, poster, id)
	require.NoError(t, err)
	return id
}

func TestScenario_ApplyMatchCompleteRate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")

	view, err := e.listings.Create(ctx, cargoInput(a, "İzmir", "Bursa"))
	require.NoError(t, err)
	id := view.Listing.ID
	assert.Equal(t, model.ListingStatusActive, view.Listing.Status)
	assert.Equal(t, "TL", view.Listing.PriceCurrency)

	view, err = e.listings.Apply(ctx, b, id)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.AccountID}, view.Listing.Applicants)

	view, err = e.listings.Match(ctx, a, id, b.AccountID)
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusMatched, view.Listing.Status)
	require.NotNil(t, view.Listing.MatchedAccountID)
	assert.Equal(t, b.AccountID, *view.Listing.MatchedAccountID)
	assert.NotNil(t, view.Listing.MatchedAt)

	view, err = e.listings.Complete(ctx, a, id)
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusCompleted, view.Listing.Status)
	assert.NotNil(t, view.Listing.CompletedAt)

	result, err := e.ratings.Submit(ctx, SubmitRatingInput{
		Principal: b,
		ListingID: id,
		TargetID:  a.AccountID,
		Score:     5,
		Comment:   "iyi iş",
	})
	require.NoError(t, err)
	assert.Equal(t, "iyi iş", result.Rating.Comment)

	account, err := e.accountRepo.GetByID(ctx, a.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, account.Rating)
	assert.Equal(t, 1, account.TotalRatings)
	assert.Equal(t, 1, account.CompletedDeliveries)
}

func TestCreate_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")

	tests := []struct {
		name   string
		mutate func(*CreateListingInput)
	}{
		{"unknown type", func(in *CreateListingInput) { in.Type = "boat" }},
		{"missing origin", func(in *CreateListingInput) { in.Origin = "  " }},
		{"missing contact", func(in *CreateListingInput) { in.Contact = "" }},
		{"missing payload", func(in *CreateListingInput) { in.Payload = nil }},
		{"payload mismatch", func(in *CreateListingInput) { in.Payload = model.VehicleDetails{VehicleType: "tır"} }},
		{"negative price", func(in *CreateListingInput) { in.PriceAmount = decimal.NewFromInt(-1) }},
		{"missing dates", func(in *CreateListingInput) { in.PickupDate = time.Time{} }},
		{"pickup after delivery", func(in *CreateListingInput) { in.PickupDate = in.DeliveryDate.Add(time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := cargoInput(a, "A", "B")
			tt.mutate(&input)
			_, err := e.listings.Create(ctx, input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := e.listings.Create(ctx, cargoInput(model.Principal{}, "A", "B"))
	assert.ErrorIs(t, err, ErrUnauthorized)

	carrier := cargoInput(a, "A", "B")
	carrier.Type = model.ListingTypeCarrierOffer
	carrier.Payload = model.VehicleDetails{VehicleType: "tır", Capacity: "24t"}
	carrier.Currency = "EUR"
	view, err := e.listings.Create(ctx, carrier)
	require.NoError(t, err)
	assert.Equal(t, "EUR", view.Listing.PriceCurrency)
	vehicle, ok := view.Listing.Payload.Vehicle()
	require.True(t, ok)
	assert.Equal(t, "24t", vehicle.Capacity)
}

func TestApply_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")
	c := e.register(t, "c")
	id := e.listing(t, a)

	_, err := e.listings.Apply(ctx, a, id)
	assert.ErrorIs(t, err, ErrPermissionDenied, "own listing")

	_, err = e.listings.Apply(ctx, b, id)
	require.NoError(t, err)
	_, err = e.listings.Apply(ctx, b, id)
	assert.ErrorIs(t, err, ErrConflict, "second apply")

	_, err = e.listings.Apply(ctx, b, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.listings.Match(ctx, a, id, b.AccountID)
	require.NoError(t, err)
	_, err = e.listings.Apply(ctx, c, id)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestMatch_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")
	c := e.register(t, "c")
	id := e.listing(t, a)
	_, err := e.listings.Apply(ctx, b, id)
	require.NoError(t, err)

	_, err = e.listings.Match(ctx, b, id, b.AccountID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = e.listings.Match(ctx, a, id, uuid.Nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.listings.Match(ctx, a, id, c.AccountID)
	assert.ErrorIs(t, err, ErrInvalidInput, "c never applied")

	_, err = e.listings.Match(ctx, a, uuid.New(), b.AccountID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.listings.Match(ctx, a, id, b.AccountID)
	require.NoError(t, err)
	_, err = e.listings.Match(ctx, a, id, b.AccountID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestComplete_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")
	id := e.listing(t, a)

	_, err := e.listings.Complete(ctx, a, id)
	assert.ErrorIs(t, err, ErrInvalidState, "active listing")

	_, err = e.listings.Apply(ctx, b, id)
	require.NoError(t, err)
	_, err = e.listings.Match(ctx, a, id, b.AccountID)
	require.NoError(t, err)

	_, err = e.listings.Complete(ctx, b, id)
	assert.ErrorIs(t, err, ErrPermissionDenied, "matched party is not the poster")

	_, err = e.listings.Complete(ctx, a, id)
	require.NoError(t, err)
	_, err = e.listings.Complete(ctx, a, id)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = e.listings.Cancel(ctx, a, id)
	assert.ErrorIs(t, err, ErrInvalidState, "completed is terminal")
}

func TestUpdateCancelDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")
	id := e.listing(t, a)

	destination := "  Eskişehir "
	view, err := e.listings.Update(ctx, UpdateListingInput{
		Principal: a,
		ListingID: id,
		Changes:   model.ListingChanges{Destination: &destination},
	})
	require.NoError(t, err)
	assert.Equal(t, "Eskişehir", view.Listing.Destination)

	_, err = e.listings.Update(ctx, UpdateListingInput{Principal: b, ListingID: id, Changes: model.ListingChanges{Destination: &destination}})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = e.listings.Update(ctx, UpdateListingInput{Principal: a, ListingID: id})
	assert.ErrorIs(t, err, ErrInvalidInput, "empty change set")

	_, err = e.listings.Update(ctx, UpdateListingInput{
		Principal: a,
		ListingID: id,
		Changes:   model.ListingChanges{Payload: model.VehicleDetails{VehicleType: "kamyon"}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "payload type is fixed")

	late := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = e.listings.Update(ctx, UpdateListingInput{
		Principal: a,
		ListingID: id,
		Changes:   model.ListingChanges{PickupDate: &late},
	})
	assert.ErrorIs(t, err, ErrInvalidInput, "pickup after stored delivery")

	assert.ErrorIs(t, e.listings.Delete(ctx, b, id), ErrPermissionDenied)

	view, err = e.listings.Cancel(ctx, a, id)
	require.NoError(t, err)
	assert.Equal(t, model.ListingStatusCancelled, view.Listing.Status)

	_, err = e.listings.Update(ctx, UpdateListingInput{Principal: a, ListingID: id, Changes: model.ListingChanges{Destination: &destination}})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorIs(t, e.listings.Delete(ctx, a, id), ErrInvalidState)

	other := e.listing(t, a)
	require.NoError(t, e.listings.Delete(ctx, a, other))
	_, err = e.listings.Get(ctx, other)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, e.listings.Delete(ctx, a, other), ErrNotFound)
}

func TestApplicants(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")
	c := e.register(t, "c")
	id := e.listing(t, a)

	for _, p := range []model.Principal{c, b} {
		_, err := e.listings.Apply(ctx, p, id)
		require.NoError(t, err)
	}

	applicants, err := e.listings.Applicants(ctx, a, id)
	require.NoError(t, err)
	require.Len(t, applicants, 2)
	assert.Equal(t, c.AccountID, applicants[0].ID, "in application order")
	assert.Equal(t, "b Nakliyat", applicants[1].CompanyName)

	_, err = e.listings.Applicants(ctx, b, id)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestList_CompletedForUserNewestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")

	first := e.completed(t, a, b)
	second := e.completed(t, b, a)
	e.listing(t, a)
	unrelated := e.register(t, "z")
	e.completed(t, unrelated, b)

	views, err := e.listings.List(ctx, ListListingsInput{AccountID: &a.AccountID, Status: "tamamlandı"})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second, views[0].Listing.ID)
	assert.Equal(t, first, views[1].Listing.ID)
	for _, v := range views {
		assert.Equal(t, model.ListingStatusCompleted, v.Listing.Status)
	}

	views, err = e.listings.List(ctx, ListListingsInput{AccountID: &a.AccountID})
	require.NoError(t, err)
	assert.Len(t, views, 1, "default is active only")

	views, err = e.listings.List(ctx, ListListingsInput{AccountID: &a.AccountID, Status: "aktif,eşleşti"})
	require.NoError(t, err)
	assert.Len(t, views, 1)

	_, err = e.listings.List(ctx, ListListingsInput{Status: "archived"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRating_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")
	c := e.register(t, "c")

	open := e.listing(t, a)
	_, err := e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: open, TargetID: a.AccountID, Score: 4})
	assert.ErrorIs(t, err, ErrInvalidState)

	id := e.completed(t, a, b)

	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: id, TargetID: a.AccountID, Score: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: id, TargetID: a.AccountID, Score: 6})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, TargetID: a.AccountID, Score: 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: uuid.New(), TargetID: a.AccountID, Score: 3})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: c, ListingID: id, TargetID: a.AccountID, Score: 3})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: id, TargetID: c.AccountID, Score: 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: id, TargetID: b.AccountID, Score: 3})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: id, TargetID: a.AccountID, Score: 3})
	require.NoError(t, err)
	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: id, TargetID: a.AccountID, Score: 5})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.ratings.Submit(ctx, SubmitRatingInput{Principal: a, ListingID: id, TargetID: b.AccountID, Score: 5})
	require.NoError(t, err, "each party rates once")
}

func TestRating_AggregateMatchesRoundedMean(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ratee := e.register(t, "ratee")

	scores := []int{5, 4, 3, 2, 1, 1}
	for i, score := range scores {
		rater := e.register(t, "rater"+string(rune('a'+i)))
		id := e.completed(t, ratee, rater)
		_, err := e.ratings.Submit(ctx, SubmitRatingInput{Principal: rater, ListingID: id, TargetID: ratee.AccountID, Score: score})
		require.NoError(t, err)
	}

	account, err := e.accountRepo.GetByID(ctx, ratee.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 2.7, account.Rating)
	assert.Equal(t, len(scores), account.TotalRatings)

	profile, err := e.accounts.Profile(ctx, model.Principal{}, ratee.AccountID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, profile.FiveStarRatings)
	assert.Equal(t, 33, profile.SatisfactionRate)
	assert.EqualValues(t, len(scores), profile.CompletedDeliveries)
	assert.False(t, profile.Self)

	received, err := e.ratings.List(ctx, ListRatingsInput{RateeID: &ratee.AccountID})
	require.NoError(t, err)
	require.Len(t, received, len(scores))
	assert.Equal(t, 1, received[0].Rating.Score, "newest first")
	assert.Equal(t, "İstanbul", received[0].ListingOrigin)

	_, err = e.ratings.List(ctx, ListRatingsInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.ratings.List(ctx, ListRatingsInput{RateeID: &ratee.AccountID, RaterID: &ratee.AccountID})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConcurrentApplies_AllSucceed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	poster := e.register(t, "poster")
	id := e.listing(t, poster)

	applicants := []model.Principal{e.register(t, "x"), e.register(t, "y"), e.register(t, "z")}
	var wg sync.WaitGroup
	for _, p := range applicants {
		wg.Add(1)
		go func(p model.Principal) {
			defer wg.Done()
			_, err := e.listings.Apply(ctx, p, id)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	listing, err := e.listingRepo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Len(t, listing.Applicants, len(applicants))
}

func TestConcurrentMatches_LosersGetInvalidState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	poster := e.register(t, "poster")
	id := e.listing(t, poster)

	var candidates []model.Principal
	for _, name := range []string{"c1", "c2", "c3"} {
		p := e.register(t, name)
		_, err := e.listings.Apply(ctx, p, id)
		require.NoError(t, err)
		candidates = append(candidates, p)
	}

	errs := make([]error, len(candidates))
	var wg sync.WaitGroup
	for i, p := range candidates {
		wg.Add(1)
		go func(i int, p model.Principal) {
			defer wg.Done()
			_, errs[i] = e.listings.Match(ctx, poster, id, p.AccountID)
		}(i, p)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrInvalidState)
	}
	assert.Equal(t, 1, wins)
}

func TestConcurrentRatings_AggregateSeesAll(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ratee := e.register(t, "ratee")

	type job struct {
		rater   model.Principal
		listing uuid.UUID
	}
	var jobs []job
	for _, name := range []string{"r1", "r2", "r3", "r4"} {
		rater := e.register(t, name)
		jobs = append(jobs, job{rater: rater, listing: e.completed(t, ratee, rater)})
	}

	var wg sync.WaitGroup
	for i, j := range jobs {
		wg.Add(1)
		go func(score int, j job) {
			defer wg.Done()
			_, err := e.ratings.Submit(ctx, SubmitRatingInput{Principal: j.rater, ListingID: j.listing, TargetID: ratee.AccountID, Score: score})
			assert.NoError(t, err)
		}(i+2, j)
	}
	wg.Wait()

	account, err := e.accountRepo.GetByID(ctx, ratee.AccountID)
	require.NoError(t, err)
	assert.Equal(t, 4, account.TotalRatings)
	assert.Equal(t, 3.5, account.Rating)
}

func TestRegisterLoginProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	session, err := e.accounts.Register(ctx, RegisterInput{
		Email:    " Ayse@Example.com ",
		Password: "secret123",
		Name:     "Ayşe",
		Phone:    "0555",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ayse@example.com", session.Profile.Account.Email)
	assert.True(t, session.Profile.Self)

	_, err = e.accounts.Register(ctx, RegisterInput{Email: "ayse@example.com", Password: "secret123", Name: "Other"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = e.accounts.Register(ctx, RegisterInput{Email: "b@example.com", Password: "123", Name: "B"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.accounts.Register(ctx, RegisterInput{Email: "not-an-email", Password: "secret123", Name: "B"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.accounts.Register(ctx, RegisterInput{Email: "b@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	logged, err := e.accounts.Login(ctx, "AYSE@example.com", "secret123")
	require.NoError(t, err)
	principal, err := auth.NewParser("test-secret").Parse(logged.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Profile.Account.ID, principal.AccountID)

	_, err = e.accounts.Login(ctx, "ayse@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.accounts.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	self, err := e.accounts.Profile(ctx, principal, principal.AccountID)
	require.NoError(t, err)
	assert.True(t, self.Self)
	assert.Equal(t, "0555", self.Account.Phone)

	_, err = e.accounts.Profile(ctx, principal, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlatformStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")

	e.completed(t, a, b)
	e.completed(t, b, a)
	e.listing(t, a)

	stats, err := e.stats.Platform(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ActiveListings)
	assert.EqualValues(t, 2, stats.CompletedListings)
	assert.EqualValues(t, 2, stats.Accounts)
	require.Len(t, stats.PopularRoutes, 1)
	assert.Equal(t, model.RouteStat{Origin: "İstanbul", Destination: "Ankara", Completed: 2}, stats.PopularRoutes[0])
}

func TestLogin_SessionCarriesReputation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.register(t, "a")
	b := e.register(t, "b")

	id := e.completed(t, a, b)
	_, err := e.ratings.Submit(ctx, SubmitRatingInput{Principal: b, ListingID: id, TargetID: a.AccountID, Score: 5})
	require.NoError(t, err)

	session, err := e.accounts.Login(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	profile, err := e.accounts.Profile(ctx, a, a.AccountID)
	require.NoError(t, err)

	assert.True(t, session.Profile.Self)
	assert.EqualValues(t, 1, session.Profile.CompletedDeliveries)
	assert.EqualValues(t, 1, session.Profile.FiveStarRatings)
	assert.Equal(t, 100, session.Profile.SatisfactionRate)
	assert.Equal(t, 5.0, session.Profile.Account.Rating)
	assert.Equal(t, profile.CompletedDeliveries, session.Profile.CompletedDeliveries)
	assert.Equal(t, profile.FiveStarRatings, session.Profile.FiveStarRatings)
	assert.Equal(t, profile.SatisfactionRate, session.Profile.SatisfactionRate)
}
