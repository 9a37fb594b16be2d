package repository

import (
	"context"
	"time"

	"github.com/iliyamo/spot-reservation/internal/model"
)

// ReservationReader answers the three lookups the reservation rules need.
// Days are calendar days normalised with calendar.Day.
type ReservationReader interface {
	FindBySpotAndDate(ctx context.Context, day time.Time, spot int) ([]model.Reservation, error)
	FindByDate(ctx context.Context, day time.Time) ([]model.Reservation, error)
	FindByOwner(ctx context.Context, ownerID uint64) ([]model.Reservation, error)
}

// ReservationTx is the view of the store inside a transaction. Create sets
// the generated ID and returns ErrSpotTaken or ErrWeekTaken when a
// uniqueness rule is violated.
type ReservationTx interface {
	ReservationReader
	Create(ctx context.Context, r *model.Reservation) error
}

// ReservationStore persists reservations. InTx runs fn in a transaction
// that is committed when fn returns nil and rolled back otherwise.
type ReservationStore interface {
	ReservationReader
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	InTx(ctx context.Context, fn func(tx ReservationTx) error) error
}

// PotStore persists savings pots.
type PotStore interface {
	Create(ctx context.Context, p *model.Pot) error
	GetByID(ctx context.Context, id uint64) (model.Pot, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Pot, error)
	Update(ctx context.Context, p *model.Pot) error
}

// UserStore persists user accounts. Emails are compared lower-cased.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}
