package middleware

import (
	"elpunto/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie holding the signed session token.
const SessionCookie = "session"

const principalKey = "principal"

// IdentityResolver turns a session token into the identity it belongs to.
type IdentityResolver interface {
	CurrentIdentity(token string) auth.Principal
}

// LoadIdentity resolves the session cookie once per request and stores the
// principal in the request locals. Requests without a usable session carry
// auth.Anonymous, and a cookie that no longer resolves is expired so the
// client stops sending it. This middleware never rejects a request; handlers
// decide what the principal may do.
func LoadIdentity(resolver IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := auth.Anonymous
		if token := c.Cookies(SessionCookie); token != "" {
			principal = resolver.CurrentIdentity(token)
			if !principal.Authenticated() {
				ExpireCookie(c, SessionCookie)
			}
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// CurrentPrincipal returns the principal stored by LoadIdentity.
func CurrentPrincipal(c *fiber.Ctx) auth.Principal {
	if p, ok := c.Locals(principalKey).(auth.Principal); ok {
		return p
	}
	return auth.Anonymous
}
