package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "gopkg.in/guregu/null.v4"

    "github.com/iliyamo/spot-reservation/internal/calendar"
    "github.com/iliyamo/spot-reservation/internal/model"
    "github.com/iliyamo/spot-reservation/internal/service"
)

// PotHandler exposes the savings-pot endpoints.
type PotHandler struct {
    Pots *service.Pots
}

func NewPotHandler(svc *service.Pots) *PotHandler {
    if svc == nil {
        panic("nil service passed to NewPotHandler")
    }
    return &PotHandler{Pots: svc}
}

// potReq is used by both create and update.  Goals are optional; amount
// is in cents and the date is a calendar day.
type potReq struct {
    Name       string      `json:"name" validate:"required,max=255"`
    AmountGoal null.Int    `json:"amount_goal" validate:"omitempty,min=0"`
    DateGoal   null.String `json:"date_goal" validate:"omitempty,datetime=2006-01-02"`
    Type       int         `json:"type" validate:"oneof=0 1"`
}

type potResp struct {
    ID         uint64      `json:"id"`
    OwnerID    uint64      `json:"owner_id"`
    Name       string      `json:"name"`
    AmountGoal null.Int    `json:"amount_goal"`
    DateGoal   null.String `json:"date_goal"`
    Type       int         `json:"type"`
    CreatedAt  time.Time   `json:"created_at"`
    UpdatedAt  time.Time   `json:"updated_at"`
}

func toPotResp(p model.Pot) potResp {
    date := null.String{}
    if p.DateGoal.Valid {
        date = null.StringFrom(calendar.FormatDay(p.DateGoal.Time))
    }
    return potResp{
        ID:         p.ID,
        OwnerID:    p.OwnerID,
        Name:       p.Name,
        AmountGoal: p.AmountGoal,
        DateGoal:   date,
        Type:       p.Type,
        CreatedAt:  p.CreatedAt,
        UpdatedAt:  p.UpdatedAt,
    }
}

// input converts the request; validation has already checked the date.
func (r potReq) input() (service.PotInput, bool) {
    in := service.PotInput{Name: r.Name, AmountGoal: r.AmountGoal, Type: r.Type}
    if r.DateGoal.Valid && r.DateGoal.String != "" {
        d, err := calendar.ParseDay(r.DateGoal.String)
        if err != nil {
            return service.PotInput{}, false
        }
        in.DateGoal = null.TimeFrom(d)
    }
    return in, true
}

// bindPot binds and validates a potReq; it has written the response when
// ok is false.
func bindPot(c echo.Context) (service.PotInput, bool, error) {
    var req potReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return service.PotInput{}, false, err
    }
    in, ok := req.input()
    if !ok {
        return service.PotInput{}, false, fieldErrors(c, FieldErrors{"date_goal": "datetime=" + calendar.DateLayout})
    }
    return in, true, nil
}

// Create handles POST /v1/pots.
func (h *PotHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    in, ok, err := bindPot(c)
    if !ok {
        return err
    }
    p, err := h.Pots.Create(c.Request().Context(), uid, in)
    if err != nil {
        return respondError(c, err, "pot")
    }
    return c.JSON(http.StatusCreated, toPotResp(p))
}

// List handles GET /v1/pots.
func (h *PotHandler) List(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ps, err := h.Pots.ListMine(c.Request().Context(), uid)
    if err != nil {
        return respondError(c, err, "pot")
    }
    out := make([]potResp, 0, len(ps))
    for _, p := range ps {
        out = append(out, toPotResp(p))
    }
    return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/pots/:id.
func (h *PotHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "pot not found"})
    }
    p, err := h.Pots.Get(c.Request().Context(), uid, id)
    if err != nil {
        return respondError(c, err, "pot")
    }
    return c.JSON(http.StatusOK, toPotResp(p))
}

// Update handles PATCH /v1/pots/:id.  Ownership is checked before the body
// is validated so a non-owner learns nothing about the pot.
func (h *PotHandler) Update(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "pot not found"})
    }
    ctx := c.Request().Context()
    if _, err := h.Pots.Get(ctx, uid, id); err != nil {
        return respondError(c, err, "pot")
    }
    in, ok, err := bindPot(c)
    if !ok {
        return err
    }
    p, err := h.Pots.Update(ctx, uid, id, in)
    if err != nil {
        return respondError(c, err, "pot")
    }
    return c.JSON(http.StatusOK, toPotResp(p))
}
