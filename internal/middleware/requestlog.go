package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"
)

// RequestLogger emits one structured line per request.  Server errors are
// logged at error level, client errors at warn, everything else at info.
func RequestLogger() echo.MiddlewareFunc {
    logger := log.WithField("component", "http")
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo's error handler write the response so the status is final
                c.Error(err)
            }

            status := c.Response().Status
            entry := logger.WithFields(log.Fields{
                "method":     c.Request().Method,
                "path":       c.Path(),
                "uri":        c.Request().RequestURI,
                "status":     status,
                "latency_ms": time.Since(start).Milliseconds(),
                "remote_ip":  c.RealIP(),
                "user_id":    userKey(c),
            })
            switch {
            case status >= 500:
                entry.WithError(err).Error("request failed")
            case status >= 400:
                entry.Warn("request rejected")
            default:
                entry.Info("request served")
            }
            return nil
        }
    }
}
