package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/rs/zerolog/log"
)

const (
	// CSRFField is the form field carrying the CSRF token.
	CSRFField = "csrf_token"
	// CSRFHeader carries the token for clients that post JSON.
	CSRFHeader = "X-CSRF-Token"
	// CSRFCookie holds the token issued to the client.
	CSRFCookie = "csrf_"

	csrfContextKey = "csrf"
)

var errMissingCSRFToken = errors.New("missing csrf token")

// CSRF rejects unsafe requests that do not echo the token issued with the
// last rendered page, either as the csrf_token form field or the
// X-CSRF-Token header.
func CSRF(secure bool) fiber.Handler {
	return csrf.New(csrf.Config{
		CookieName:     CSRFCookie,
		CookiePath:     "/",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     2 * time.Hour,
		ContextKey:     csrfContextKey,
		Extractor: func(c *fiber.Ctx) (string, error) {
			if token := c.Get(CSRFHeader); token != "" {
				return token, nil
			}
			if token := c.FormValue(CSRFField); token != "" {
				return token, nil
			}
			return "", errMissingCSRFToken
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Warn().Err(err).Str("path", c.Path()).Msg("csrf check failed")
			return fiber.NewError(fiber.StatusForbidden, "El formulario ha caducado. Recarga la página e inténtalo de nuevo.")
		},
	})
}

// CSRFToken returns the token to embed in forms rendered for this request.
func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(csrfContextKey).(string)
	return token
}
