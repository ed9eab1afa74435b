package repository

import (
	"context"
	"time"

	"wedding-guest-list/internal/model"
)

// GuestRepository is the durable store of guests.
//
// Every method runs as one transaction on the underlying engine: it either
// commits completely or leaves the store as it was. Invalid input fails with
// apperrors.ErrConstraintViolation and engine failures with apperrors.ErrStorage.
type GuestRepository interface {
	// Initialize creates the guest collection if it does not exist yet.
	// Calling it again is a no-op.
	Initialize(ctx context.Context) error
	Create(ctx context.Context, input model.GuestInput) (int64, error)
	// List returns every guest ordered by name, ties broken by id.
	List(ctx context.Context) ([]*model.Guest, error)
	// FindByID returns apperrors.ErrGuestNotFound when no guest has the id.
	FindByID(ctx context.Context, id int64) (*model.Guest, error)
	// Update replaces all mutable fields and reports whether the guest existed.
	Update(ctx context.Context, id int64, input model.GuestInput) (bool, error)
	// Delete removes the guest and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
	Statistics(ctx context.Context) (model.Statistics, error)
}

// laterOf keeps updated_at from moving backwards when the clock does.
func laterOf(now, previous time.Time) time.Time {
	if previous.After(now) {
		return previous
	}
	return now
}
