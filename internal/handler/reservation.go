package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/spot-reservation/internal/calendar"
    "github.com/iliyamo/spot-reservation/internal/model"
    "github.com/iliyamo/spot-reservation/internal/service"
)

// ReservationHandler exposes booking, listing and single reads.  All
// methods assume JWT authentication has already run.
type ReservationHandler struct {
    Reservations *service.Reservations
}

func NewReservationHandler(svc *service.Reservations) *ReservationHandler {
    if svc == nil {
        panic("nil service passed to NewReservationHandler")
    }
    return &ReservationHandler{Reservations: svc}
}

// createReservationReq is the booking payload.  Any client-supplied
// reference or owner is ignored: both come from the server.
type createReservationReq struct {
    BookedAt string `json:"booked_at" validate:"required,datetime=2006-01-02"`
    Spot     int    `json:"spot" validate:"required,min=1,max=7"`
}

// reservationResp is the wire shape of a reservation.
type reservationResp struct {
    ID        uint64    `json:"id"`
    Reference string    `json:"reference"`
    BookedAt  string    `json:"booked_at"`
    Spot      int       `json:"spot"`
    OwnerID   uint64    `json:"owner_id"`
    CreatedAt time.Time `json:"created_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
    return reservationResp{
        ID:        r.ID,
        Reference: r.Reference,
        BookedAt:  calendar.FormatDay(r.BookedAt),
        Spot:      r.Spot,
        OwnerID:   r.OwnerID,
        CreatedAt: r.CreatedAt,
    }
}

// Create handles POST /v1/reservations.  201 with the reservation, 422
// with {"error","category"} when a rule refuses it.
func (h *ReservationHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var req createReservationReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    day, err := calendar.ParseDay(req.BookedAt)
    if err != nil {
        return fieldErrors(c, FieldErrors{"booked_at": "datetime=" + calendar.DateLayout})
    }

    r, err := h.Reservations.Create(c.Request().Context(), uid, day, req.Spot)
    if err != nil {
        return respondError(c, err, "reservation")
    }
    return c.JSON(http.StatusCreated, toReservationResp(r))
}

// List handles GET /v1/reservations and returns only the caller's rows.
func (h *ReservationHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    rs, err := h.Reservations.ListMine(c.Request().Context(), uid)
    if err != nil {
        return respondError(c, err, "reservation")
    }
    out := make([]reservationResp, 0, len(rs))
    for _, r := range rs {
        out = append(out, toReservationResp(r))
    }
    return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/reservations/:id.  Another user's reservation is
// reported exactly like a missing one.
func (h *ReservationHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    }
    r, err := h.Reservations.Get(c.Request().Context(), uid, id)
    if err != nil {
        return respondError(c, err, "reservation")
    }
    return c.JSON(http.StatusOK, toReservationResp(r))
}
