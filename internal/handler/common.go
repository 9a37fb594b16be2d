package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"

    "github.com/iliyamo/spot-reservation/internal/authz"
    "github.com/iliyamo/spot-reservation/internal/repository"
    "github.com/iliyamo/spot-reservation/internal/reservation"
)

// Error categories reported next to rule rejections.
const (
    categoryMalformedInput        = "MalformedInput"
    categoryFieldValidationFailed = "FieldValidationFailed"
)

var logger = log.WithField("component", "handler")

// getUserID extracts the user_id placed in echo.Context by the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id") // fetch user_id from context
    switch t := v.(type) {
    case uint64:
        if t != 0 {
            return t, nil
        }
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id != 0
}

// bindAndValidate decodes the request into req and runs the field rules.
// It writes the 400 / 422 response itself and reports whether the caller
// may continue.
func bindAndValidate(c echo.Context, req interface{}) (bool, error) {
    if err := c.Bind(req); err != nil {
        return false, c.JSON(http.StatusBadRequest, echo.Map{
            "error":    "invalid request body",
            "category": categoryMalformedInput,
        })
    }
    if err := c.Validate(req); err != nil {
        var verr *ValidationError
        if errors.As(err, &verr) {
            return false, fieldErrors(c, verr.Fields)
        }
        return false, err
    }
    return true, nil
}

func fieldErrors(c echo.Context, fields FieldErrors) error {
    return c.JSON(http.StatusUnprocessableEntity, echo.Map{
        "error":    "validation failed",
        "category": categoryFieldValidationFailed,
        "fields":   fields,
    })
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// respondError maps service errors onto HTTP responses.  what names the
// resource in the 404 body ("reservation", "pot").
func respondError(c echo.Context, err error, what string) error {
    if rej, ok := reservation.AsRejection(err); ok {
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{
            "error":    rej.Message,
            "category": string(rej.Category),
        })
    }
    switch {
    case errors.Is(err, authz.ErrNotFoundOrForbidden), errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "concurrent update, please retry"})
    }
    logger.WithError(err).WithField("path", c.Path()).Error("request failed")
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
