// Package queue carries reservation events to the message broker and back.
// Publishers are chosen at startup (RabbitMQ, Kafka or none); the RabbitMQ
// consumer appends every event to a local log file.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/spot-reservation/internal/calendar"
    "github.com/iliyamo/spot-reservation/internal/model"
)

// ReservationCreatedQueue is the durable queue (and Kafka topic default)
// that receives ReservationCreatedEvent payloads.
const ReservationCreatedQueue = "reservation.created"

// ReservationCreatedEvent is published after a reservation commits.  It
// contains enough information for downstream consumers to log or notify
// without querying the primary database.
type ReservationCreatedEvent struct {
    EventID       string `json:"event_id"`
    ReservationID uint64 `json:"reservation_id"`
    Reference     string `json:"reference"`
    OwnerID       uint64 `json:"owner_id"`
    BookedAt      string `json:"booked_at"` // YYYY-MM-DD
    Spot          int    `json:"spot"`
    ISOWeek       string `json:"iso_week"`
    CreatedAt     string `json:"created_at"` // RFC 3339
}

// NewReservationCreatedEvent builds the event for a persisted reservation.
func NewReservationCreatedEvent(r model.Reservation) ReservationCreatedEvent {
    return ReservationCreatedEvent{
        EventID:       uuid.NewString(),
        ReservationID: r.ID,
        Reference:     r.Reference,
        OwnerID:       r.OwnerID,
        BookedAt:      calendar.FormatDay(r.BookedAt),
        Spot:          r.Spot,
        ISOWeek:       r.ISOWeek().String(),
        CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
    }
}
