// Package reservation implements the business rules a candidate reservation
// must satisfy before it is persisted. The validator only reads; callers run
// it inside the same transaction as the insert.
package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/spot-reservation/internal/calendar"
	"github.com/iliyamo/spot-reservation/internal/model"
)

const (
	// fridayCapacity is the number of bookable spots on Fridays.
	fridayCapacity = model.SpotCount - 1
)

// Queries is the read side of the reservation store used by the rules.
// Days passed in are already normalised with calendar.Day.
type Queries interface {
	FindBySpotAndDate(ctx context.Context, day time.Time, spot int) ([]model.Reservation, error)
	FindByDate(ctx context.Context, day time.Time) ([]model.Reservation, error)
	FindByOwner(ctx context.Context, ownerID uint64) ([]model.Reservation, error)
}

// Validator runs the spot, daily and weekly checks in that order and stops
// at the first rejection.
type Validator struct {
	now      func() time.Time
	location *time.Location
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the location in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) {
		if loc != nil {
			v.location = loc
		}
	}
}

// NewValidator returns a Validator using the wall clock in UTC unless
// overridden.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{now: time.Now, location: time.UTC}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// DailyCapacity returns how many reservations day accepts: every spot,
// except on Fridays when one spot closes.
func DailyCapacity(day time.Time) int {
	if calendar.Day(day).Weekday() == time.Friday {
		return fridayCapacity
	}
	return model.SpotCount
}

// EarliestBookable returns the first day a reservation may be made for.
func (v *Validator) EarliestBookable() time.Time {
	return calendar.Tomorrow(v.now().In(v.location))
}

// Validate returns nil when the candidate may be persisted, a *Rejection
// when a rule refuses it, or a wrapped error when a query fails.
func (v *Validator) Validate(ctx context.Context, q Queries, candidate model.Reservation) error {
	candidate.BookedAt = calendar.Day(candidate.BookedAt)
	if err := v.checkSpot(ctx, q, candidate); err != nil {
		return err
	}
	if err := v.checkDay(ctx, q, candidate); err != nil {
		return err
	}
	return v.checkOwnerWeek(ctx, q, candidate)
}

// checkSpot rejects the candidate when its spot is already booked that day.
func (v *Validator) checkSpot(ctx context.Context, q Queries, c model.Reservation) error {
	existing, err := q.FindBySpotAndDate(ctx, c.BookedAt, c.Spot)
	if err != nil {
		return fmt.Errorf("find by spot and date: %w", err)
	}
	for _, r := range existing {
		if r.Spot == c.Spot && calendar.SameDay(r.BookedAt, c.BookedAt) {
			return Reject(SpotTaken, "spot %d is already booked on %s", c.Spot, calendar.FormatDay(c.BookedAt))
		}
	}
	return nil
}

// checkDay enforces the daily capacity, then the one-day lead time.
func (v *Validator) checkDay(ctx context.Context, q Queries, c model.Reservation) error {
	existing, err := q.FindByDate(ctx, c.BookedAt)
	if err != nil {
		return fmt.Errorf("find by date: %w", err)
	}
	sameDay := 0
	for _, r := range existing {
		if calendar.SameDay(r.BookedAt, c.BookedAt) {
			sameDay++
		}
	}
	if sameDay >= DailyCapacity(c.BookedAt) {
		return Reject(DailyLimitReached, "reservation limit reached on %s", calendar.FormatDay(c.BookedAt))
	}
	if c.BookedAt.Before(v.EarliestBookable()) {
		return Reject(TooSoon, "the earliest bookable day is %s", calendar.FormatDay(v.EarliestBookable()))
	}
	return nil
}

// checkOwnerWeek allows a single reservation per owner and ISO week.
func (v *Validator) checkOwnerWeek(ctx context.Context, q Queries, c model.Reservation) error {
	existing, err := q.FindByOwner(ctx, c.OwnerID)
	if err != nil {
		return fmt.Errorf("find by owner: %w", err)
	}
	week := calendar.ISOWeek(c.BookedAt)
	for _, r := range existing {
		if calendar.ISOWeek(r.BookedAt) == week {
			return Reject(WeeklyLimitReached, "only one reservation per week is allowed (week %s)", week)
		}
	}
	return nil
}
