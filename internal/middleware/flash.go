package middleware

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// FlashCookie carries messages from a redirecting request to the page that
// follows it.
const FlashCookie = "flash"

const (
	flashKey        = "flashes"
	pendingFlashKey = "flashes.pending"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Flashes moves the messages left by the previous response into the request
// locals and expires the cookie, so each message is shown once.
func Flashes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw := c.Cookies(FlashCookie); raw != "" {
			c.Locals(flashKey, decodeFlashes(raw))
			ExpireCookie(c, FlashCookie)
		}
		return c.Next()
	}
}

// IncomingFlashes returns the messages loaded by Flashes for this request.
func IncomingFlashes(c *fiber.Ctx) []Flash {
	flashes, _ := c.Locals(flashKey).([]Flash)
	return flashes
}

// AddFlash queues a message for the next page the client loads.
func AddFlash(c *fiber.Ctx, category, message string) {
	pending, _ := c.Locals(pendingFlashKey).([]Flash)
	pending = append(pending, Flash{Category: category, Message: message})
	c.Locals(pendingFlashKey, pending)

	value, err := encodeFlashes(pending)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode flash messages")
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func encodeFlashes(flashes []Flash) (string, error) {
	body, err := json.Marshal(flashes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(body), nil
}

func decodeFlashes(raw string) []Flash {
	body, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(body, &flashes); err != nil {
		return nil
	}
	return flashes
}

// ExpireCookie tells the client to drop the site-wide cookie name.
func ExpireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
