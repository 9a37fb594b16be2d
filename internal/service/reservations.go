// Package service wires the rule engine, the authorization policy, storage
// and event publishing into the use cases exposed over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/spot-reservation/internal/authz"
	"github.com/iliyamo/spot-reservation/internal/calendar"
	"github.com/iliyamo/spot-reservation/internal/metrics"
	"github.com/iliyamo/spot-reservation/internal/model"
	"github.com/iliyamo/spot-reservation/internal/queue"
	"github.com/iliyamo/spot-reservation/internal/repository"
	"github.com/iliyamo/spot-reservation/internal/reservation"
)

// publishTimeout bounds how long a committed booking waits on the broker.
const publishTimeout = 5 * time.Second

// Availability describes how a single day is booked.
type Availability struct {
	Date      time.Time
	Capacity  int
	Taken     []int
	Free      []int
	Remaining int
	Bookable  bool // the day accepts a new reservation right now
}

// Reservations implements booking, listing and single reads of reservations.
type Reservations struct {
	store     repository.ReservationStore
	validator *reservation.Validator
	policy    authz.Policy
	publisher queue.Publisher
	metrics   *metrics.ReservationMetrics
	now       func() time.Time
	logger    *log.Entry
}

// ReservationsOption configures Reservations.
type ReservationsOption func(*Reservations)

// WithPublisher sets the broker that receives reservation.created events.
func WithPublisher(p queue.Publisher) ReservationsOption {
	return func(s *Reservations) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.ReservationMetrics) ReservationsOption {
	return func(s *Reservations) { s.metrics = m }
}

// WithNow overrides the clock used to stamp new reservations. It should
// agree with the clock given to the validator.
func WithNow(now func() time.Time) ReservationsOption {
	return func(s *Reservations) { s.now = now }
}

// NewReservations returns the reservation use cases backed by store.
func NewReservations(store repository.ReservationStore, validator *reservation.Validator, policy authz.Policy, opts ...ReservationsOption) *Reservations {
	s := &Reservations{
		store:     store,
		validator: validator,
		policy:    policy,
		publisher: queue.NoopPublisher{},
		now:       time.Now,
		logger:    log.WithField("component", "reservation-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a reservation for ownerID in a single
// transaction. It returns a *reservation.Rejection when a rule refuses
// the booking, including when a concurrent booking wins the race for the
// same spot or week.
func (s *Reservations) Create(ctx context.Context, ownerID uint64, bookedAt time.Time, spot int) (model.Reservation, error) {
	candidate := model.NewReservation(ownerID, bookedAt, spot, s.now())

	err := s.store.InTx(ctx, func(tx repository.ReservationTx) error {
		started := time.Now()
		err := s.validator.Validate(ctx, tx, candidate)
		s.metrics.ObserveValidation(time.Since(started))
		if err != nil {
			return err
		}
		return translateUnique(tx.Create(ctx, &candidate), candidate)
	})
	if err != nil {
		entry := s.logger.WithFields(log.Fields{
			"user_id":   ownerID,
			"booked_at": calendar.FormatDay(candidate.BookedAt),
			"spot":      spot,
		})
		if rej, ok := reservation.AsRejection(err); ok {
			s.metrics.RecordRejected(string(rej.Category))
			entry.WithField("category", rej.Category).Info("reservation rejected")
			return model.Reservation{}, err
		}
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.RecordConflict()
			entry.WithError(err).Warn("reservation transaction conflicted")
			return model.Reservation{}, err
		}
		return model.Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	s.metrics.RecordCreated()
	s.logger.WithFields(log.Fields{
		"reservation_id": candidate.ID,
		"reference":      candidate.Reference,
		"user_id":        ownerID,
	}).Info("reservation created")
	s.publish(ctx, candidate)
	return candidate, nil
}

// translateUnique turns a storage uniqueness error into the rejection the
// validator would have produced had it seen the competing row.
func translateUnique(err error, c model.Reservation) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrSpotTaken):
		return reservation.Reject(reservation.SpotTaken, "spot %d is already booked on %s", c.Spot, calendar.FormatDay(c.BookedAt))
	case errors.Is(err, repository.ErrWeekTaken):
		return reservation.Reject(reservation.WeeklyLimitReached, "only one reservation per week is allowed (week %s)", c.ISOWeek())
	}
	return err
}

// publish emits the created event; failures are logged and counted only.
func (s *Reservations) publish(ctx context.Context, r model.Reservation) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.publisher.PublishReservationCreated(pubCtx, queue.NewReservationCreatedEvent(r)); err != nil {
		s.metrics.RecordPublishFailure()
		s.logger.WithError(err).WithField("reservation_id", r.ID).Warn("publish reservation.created failed")
	}
}

// Get returns reservation id when actorID owns it. Absence and denial both
// yield authz.ErrNotFoundOrForbidden.
func (s *Reservations) Get(ctx context.Context, actorID, id uint64) (model.Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Reservation{}, authz.ErrNotFoundOrForbidden
		}
		return model.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	if err := authz.Require(s.policy, authz.Identity(actorID), authz.Identity(r.OwnerID)); err != nil {
		s.metrics.RecordAuthzDenied("reservation")
		return model.Reservation{}, err
	}
	return r, nil
}

// ListMine returns the reservations owned by actorID, latest day first.
func (s *Reservations) ListMine(ctx context.Context, actorID uint64) ([]model.Reservation, error) {
	rs, err := s.store.FindByOwner(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return rs, nil
}

// Availability reports the capacity, taken and free spots of day.
func (s *Reservations) Availability(ctx context.Context, day time.Time) (Availability, error) {
	day = calendar.Day(day)
	rs, err := s.store.FindByDate(ctx, day)
	if err != nil {
		return Availability{}, fmt.Errorf("find by date: %w", err)
	}

	taken := make(map[int]bool, len(rs))
	a := Availability{Date: day, Capacity: reservation.DailyCapacity(day), Taken: []int{}, Free: []int{}}
	for _, r := range rs {
		taken[r.Spot] = true
	}
	for spot := 1; spot <= model.SpotCount; spot++ {
		if taken[spot] {
			a.Taken = append(a.Taken, spot)
		} else {
			a.Free = append(a.Free, spot)
		}
	}
	a.Remaining = a.Capacity - len(rs)
	if a.Remaining < 0 {
		a.Remaining = 0
	}
	a.Bookable = a.Remaining > 0 && !day.Before(s.validator.EarliestBookable())
	return a, nil
}
