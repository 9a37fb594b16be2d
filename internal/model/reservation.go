package model

import (
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/spot-reservation/internal/calendar"
)

// SpotCount is the number of fixed physical spots. Spots are numbered
// 1..SpotCount.
const SpotCount = 7

// Reservation records a user's booking of one spot for one calendar day.
// It corresponds to a row in the `reservations` table.  Reservations are
// never updated after creation.
//
// Fields:
//  ID        – primary key identifier.
//  Reference – opaque booking reference generated at creation time.
//  BookedAt  – the day the spot is reserved for (time of day ignored).
//  Spot      – spot number in [1, SpotCount].
//  OwnerID   – user who made the reservation.
//  CreatedAt – creation timestamp.
type Reservation struct {
    ID        uint64    // reservations.id
    Reference string    // reservations.reference
    BookedAt  time.Time // reservations.booked_at (DATE)
    Spot      int       // reservations.spot
    OwnerID   uint64    // reservations.user_id
    CreatedAt time.Time // reservations.created_at
}

// NewReservation builds a candidate reservation for ownerID. The booked day
// is normalised to a calendar day and a fresh reference is generated from
// now.
func NewReservation(ownerID uint64, bookedAt time.Time, spot int, now time.Time) Reservation {
    return Reservation{
        Reference: NewReference(now),
        BookedAt:  calendar.Day(bookedAt),
        Spot:      spot,
        OwnerID:   ownerID,
        CreatedAt: now.UTC(),
    }
}

// ISOWeek returns the ISO week the reservation falls in.
func (r Reservation) ISOWeek() calendar.Week {
    return calendar.ISOWeek(r.BookedAt)
}

// NewReference returns YYYYMMDDHH-<13 hex chars>. The prefix comes from now,
// the suffix from a random UUID.
func NewReference(now time.Time) string {
    suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
    return now.Format("2006010215") + "-" + suffix[:13]
}
