package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/spot-reservation/internal/calendar"
)

type availabilityReq struct {
    Date string `query:"date" validate:"required,datetime=2006-01-02"`
}

type availabilityResp struct {
    Date      string `json:"date"`
    Capacity  int    `json:"capacity"`
    Taken     []int  `json:"taken"`
    Free      []int  `json:"free"`
    Remaining int    `json:"remaining"`
    Bookable  bool   `json:"bookable"`
}

// Availability handles GET /v1/availability?date=YYYY-MM-DD.
func (h *ReservationHandler) Availability(c echo.Context) error {
    var req availabilityReq
    if ok, err := bindAndValidate(c, &req); !ok {
        return err
    }
    day, err := calendar.ParseDay(req.Date)
    if err != nil {
        return fieldErrors(c, FieldErrors{"date": "datetime=" + calendar.DateLayout})
    }
    a, err := h.Reservations.Availability(c.Request().Context(), day)
    if err != nil {
        return respondError(c, err, "availability")
    }
    return c.JSON(http.StatusOK, availabilityResp{
        Date:      calendar.FormatDay(a.Date),
        Capacity:  a.Capacity,
        Taken:     a.Taken,
        Free:      a.Free,
        Remaining: a.Remaining,
        Bookable:  a.Bookable,
    })
}
