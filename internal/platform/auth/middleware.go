package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	doctorEmailKey contextKey = "doctor_email"
	doctorNameKey  contextKey = "doctor_name"
)

// Middleware authenticates requests with a bearer token and stores the
// doctor's identity on the request context.
func Middleware(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set("doctor_email", claims.Email)
			c.Set("doctor_name", claims.Name)

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, doctorEmailKey, claims.Email)
			ctx = context.WithValue(ctx, doctorNameKey, claims.Name)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// DoctorEmail returns the authenticated doctor's email, or "" if absent.
func DoctorEmail(ctx context.Context) string {
	email, _ := ctx.Value(doctorEmailKey).(string)
	return email
}

// DoctorName returns the authenticated doctor's display name.
func DoctorName(ctx context.Context) string {
	name, _ := ctx.Value(doctorNameKey).(string)
	return name
}
