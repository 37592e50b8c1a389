package middleware

import (
    "context"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/feedback-board/internal/repository"
)

// VisitLogger records page views for the analytics dashboard.  Only GET
// navigation requests are counted; API chatter and admin traffic would
// inflate the numbers.  Recording happens after the response on a short
// detached context so a slow insert never delays the page.
func VisitLogger(visits *repository.VisitRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            err := next(c)

            r := c.Request()
            if r.Method != "GET" || strings.HasPrefix(r.URL.Path, "/api/") {
                return err
            }
            ip := c.RealIP()
            path := r.URL.Path
            go func() {
                ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
                defer cancel()
                if rerr := visits.Record(ctx, ip, path); rerr != nil {
                    logrus.WithError(rerr).Debug("visit log insert failed")
                }
            }()
            return err
        }
    }
}
