package service

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/freightmarket/internal/model"
)

// Guards check one action on one listing and return the kind of failure, nil when the
// action may proceed. They are evaluated on a fresh read before a write and again on the
// re-read after a conditional write did not land.

func guardApply(listing *model.Listing, actor uuid.UUID) error {
	if listing.PosterID == actor {
		return fmt.Errorf("%w: cannot apply to your own listing", ErrPermissionDenied)
	}
	if listing.Status != model.ListingStatusActive {
		return fmt.Errorf("%w: listing is %s", ErrInvalidState, listing.Status)
	}
	if listing.HasApplicant(actor) {
		return fmt.Errorf("%w: already applied to this listing", ErrConflict)
	}
	return nil
}

func guardApplicants(listing *model.Listing, actor uuid.UUID) error {
	if listing.PosterID != actor {
		return fmt.Errorf("%w: only the poster can see applicants", ErrPermissionDenied)
	}
	return nil
}

func guardMatch(listing *model.Listing, actor, target uuid.UUID) error {
	if listing.PosterID != actor {
		return fmt.Errorf("%w: only the poster can match", ErrPermissionDenied)
	}
	if target == uuid.Nil {
		return fmt.Errorf("%w: account to match is required", ErrInvalidInput)
	}
	if !listing.Status.CanTransition(model.ListingStatusMatched) {
		return fmt.Errorf("%w: listing is %s", ErrInvalidState, listing.Status)
	}
	if !listing.HasApplicant(target) {
		return fmt.Errorf("%w: account has not applied to this listing", ErrInvalidInput)
	}
	return nil
}

func guardComplete(listing *model.Listing, actor uuid.UUID) error {
	if listing.PosterID != actor {
		return fmt.Errorf("%w: only the poster can complete", ErrPermissionDenied)
	}
	if !listing.Status.CanTransition(model.ListingStatusCompleted) {
		return fmt.Errorf("%w: listing is %s", ErrInvalidState, listing.Status)
	}
	return nil
}

func guardCancel(listing *model.Listing, actor uuid.UUID) error {
	if listing.PosterID != actor {
		return fmt.Errorf("%w: only the poster can cancel", ErrPermissionDenied)
	}
	if !listing.Status.CanTransition(model.ListingStatusCancelled) {
		return fmt.Errorf("%w: listing is %s", ErrInvalidState, listing.Status)
	}
	return nil
}

func guardUpdate(listing *model.Listing, actor uuid.UUID) error {
	if listing.PosterID != actor {
		return fmt.Errorf("%w: only the poster can edit", ErrPermissionDenied)
	}
	if listing.Status != model.ListingStatusActive {
		return fmt.Errorf("%w: only active listings can be edited", ErrInvalidState)
	}
	return nil
}

func guardDelete(listing *model.Listing, actor uuid.UUID) error {
	if listing.PosterID != actor {
		return fmt.Errorf("%w: only the poster can delete", ErrPermissionDenied)
	}
	if listing.Status != model.ListingStatusActive {
		return fmt.Errorf("%w: only active listings can be deleted", ErrInvalidState)
	}
	return nil
}

func guardRate(listing *model.Listing, actor, target uuid.UUID) error {
	if listing.Status != model.ListingStatusCompleted {
		return fmt.Errorf("%w: only completed listings can be rated", ErrInvalidState)
	}
	counterparty, ok := listing.Counterparty(actor)
	if !ok {
		return fmt.Errorf("%w: only the parties of a listing can rate", ErrPermissionDenied)
	}
	if counterparty != target {
		return fmt.Errorf("%w: target must be the other party", ErrInvalidInput)
	}
	return nil
}

func guardCertificate(listing *model.Listing, actor uuid.UUID) error {
	if !listing.IsParty(actor) {
		return fmt.Errorf("%w: only the parties of a listing can get its certificate", ErrPermissionDenied)
	}
	if listing.Status != model.ListingStatusCompleted {
		return fmt.Errorf("%w: listing is not completed", ErrInvalidState)
	}
	return nil
}
