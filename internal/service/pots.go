package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"

	"github.com/iliyamo/spot-reservation/internal/authz"
	"github.com/iliyamo/spot-reservation/internal/calendar"
	"github.com/iliyamo/spot-reservation/internal/metrics"
	"github.com/iliyamo/spot-reservation/internal/model"
	"github.com/iliyamo/spot-reservation/internal/repository"
)

// PotInput carries the client-editable fields of a pot.
type PotInput struct {
	Name       string
	AmountGoal null.Int
	DateGoal   null.Time
	Type       int
}

// Pots implements the savings-pot use cases.
type Pots struct {
	store   repository.PotStore
	policy  authz.Policy
	metrics *metrics.ReservationMetrics
	now     func() time.Time
	logger  *log.Entry
}

// NewPots returns the pot use cases. m may be nil.
func NewPots(store repository.PotStore, policy authz.Policy, m *metrics.ReservationMetrics) *Pots {
	return &Pots{
		store:   store,
		policy:  policy,
		metrics: m,
		now:     time.Now,
		logger:  log.WithField("component", "pot-service"),
	}
}

// Create stores a pot for ownerID. The type falls back to flexible when
// no goal is given.
func (s *Pots) Create(ctx context.Context, ownerID uint64, in PotInput) (model.Pot, error) {
	now := s.now().UTC()
	p := model.Pot{
		OwnerID:    ownerID,
		Name:       in.Name,
		AmountGoal: in.AmountGoal,
		DateGoal:   normalizeDate(in.DateGoal),
		Type:       in.Type,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.ApplyDefaults()
	if err := s.store.Create(ctx, &p); err != nil {
		return model.Pot{}, fmt.Errorf("create pot: %w", err)
	}
	s.logger.WithFields(log.Fields{"pot_id": p.ID, "user_id": ownerID}).Info("pot created")
	return p, nil
}

// Get returns pot id when actorID owns it.
func (s *Pots) Get(ctx context.Context, actorID, id uint64) (model.Pot, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Pot{}, authz.ErrNotFoundOrForbidden
		}
		return model.Pot{}, fmt.Errorf("get pot: %w", err)
	}
	if err := authz.Require(s.policy, authz.Identity(actorID), authz.Identity(p.OwnerID)); err != nil {
		s.metrics.RecordAuthzDenied("pot")
		return model.Pot{}, err
	}
	return p, nil
}

// ListMine returns the pots owned by actorID.
func (s *Pots) ListMine(ctx context.Context, actorID uint64) ([]model.Pot, error) {
	ps, err := s.store.ListByOwner(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("list pots: %w", err)
	}
	return ps, nil
}

// Update replaces the name, goals and type of pot id. The supplied type is
// stored as is; defaults apply on create only.
func (s *Pots) Update(ctx context.Context, actorID, id uint64, in PotInput) (model.Pot, error) {
	p, err := s.Get(ctx, actorID, id)
	if err != nil {
		return model.Pot{}, err
	}
	p.Name = in.Name
	p.AmountGoal = in.AmountGoal
	p.DateGoal = normalizeDate(in.DateGoal)
	p.Type = in.Type
	p.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, &p); err != nil {
		return model.Pot{}, fmt.Errorf("update pot: %w", err)
	}
	return p, nil
}

func normalizeDate(t null.Time) null.Time {
	if !t.Valid {
		return t
	}
	return null.TimeFrom(calendar.Day(t.Time))
}
