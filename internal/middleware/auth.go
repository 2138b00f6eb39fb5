package middleware

import (
	"errors"
	"net/http"
	"strings"

	"payhere-integration-demo/internal/apperr"
	"payhere-integration-demo/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	// APIKeyContextKey holds the *model.APIKey after APIKeyAuth passes.
	APIKeyContextKey = "api_key"
	// UserEmailContextKey holds the authenticated email after JWTAuth.
	UserEmailContextKey = "user_email"
)

// APIKeyAuth validates the x-api-key header against the credential store and
// burns one unit of quota per request. A depleted key gets 429, everything
// else that fails gets 401.
func APIKeyAuth(apiKeyService service.APIKeyService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			presented := c.Request().Header.Get("x-api-key")

			key, err := apiKeyService.ValidateAndConsume(c.Request().Context(), presented)
			if err != nil {
				switch {
				case errors.Is(err, apperr.ErrQuotaExhausted):
					return echo.NewHTTPError(http.StatusTooManyRequests, "quota exhausted")
				case errors.Is(err, apperr.ErrUnauthorized):
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or inactive api key")
				default:
					return err
				}
			}

			c.Set(APIKeyContextKey, key)
			return next(c)
		}
	}
}

// JWTAuth guards account endpoints with a bearer token issued by /login.
func JWTAuth(userService service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			email, err := userService.VerifyToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			c.Set(UserEmailContextKey, email)
			return next(c)
		}
	}
}
