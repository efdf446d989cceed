package middleware

import (
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "likeboard/internal/errors"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// id under UserIDKey otherwise.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  UserIDKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			userID, err := verifier.Verify(auth)
			if err != nil {
				return nil, err
			}
			return userID, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrMissingToken.Error()).
					SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrInvalidToken.Error()).
				SetInternal(err)
		},
	})
}

// UserID returns the id stored by Auth, or "" on unauthenticated routes.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}
