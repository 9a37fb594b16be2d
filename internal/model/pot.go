package model

import (
    "time"

    "gopkg.in/guregu/null.v4"
)

// Pot types.
const (
    PotTypeFlexible = 0 // no fixed goal
    PotTypeGoal     = 1 // amount and/or date goal
)

// Pot is a user-owned savings goal, stored in the `pots` table.
// AmountGoal is expressed in cents.
type Pot struct {
    ID         uint64    // pots.id
    OwnerID    uint64    // pots.user_id
    Name       string    // pots.name
    AmountGoal null.Int  // pots.amount_goal (nullable)
    DateGoal   null.Time // pots.date_goal (nullable DATE)
    Type       int       // pots.type
    CreatedAt  time.Time // pots.created_at
    UpdatedAt  time.Time // pots.updated_at
}

// HasGoal reports whether either goal is set. A zero amount counts as unset.
func (p Pot) HasGoal() bool {
    return p.AmountGoal.ValueOrZero() != 0 || (p.DateGoal.Valid && !p.DateGoal.Time.IsZero())
}

// ApplyDefaults coerces the type to flexible when no goal is given. It is
// applied when a pot is created.
func (p *Pot) ApplyDefaults() {
    if !p.HasGoal() {
        p.Type = PotTypeFlexible
    }
}
