package handlers

import (
	"strings"
	"time"

	"elpunto/internal/auth"
	"elpunto/internal/middleware"
	"elpunto/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// CookieConfig controls how the session cookie is issued.
type CookieConfig struct {
	Secure bool
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	authService    *services.AuthService
	sessionService *services.SessionService
	cookies        CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, sessionService *services.SessionService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		cookies:        cookies,
	}
}

// RegisterRoutes registers the authentication routes. loginGuards run
// before every login attempt, e.g. a rate limiter.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, loginGuards ...fiber.Handler) {
	router.Get("/register", h.HandleRegisterPage)
	router.Post("/register", h.HandleRegister)
	router.Get("/login", h.HandleLoginPage)
	router.Post("/login", append(loginGuards, h.HandleLogin)...)
	router.Get("/logout", h.HandleLogout)
}

// HandleRegisterPage renders the empty registration form.
func (h *AuthHandler) HandleRegisterPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "register", nil)
}

// HandleRegister creates a new account and sends the user to the login page.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var form services.RegistrationForm
	if err := c.BodyParser(&form); err != nil {
		log.Debug().Err(err).Msg("unreadable registration body")
		return submissionError(c, "register", "", &services.ValidationError{Fields: map[string]string{"form": "Formulario no válido."}}, nil)
	}

	user, err := h.authService.Register(form)
	if err != nil {
		return submissionError(c, "register", "", err, fiber.Map{
			"form": fiber.Map{"username": form.Username, "email": form.Email},
		})
	}

	log.Info().Str("user_id", user.ID).Msg("registration completed")
	middleware.AddFlash(c, flashSuccess, "Registro completado, ahora inicia sesión.")
	return c.Redirect("/login", fiber.StatusFound)
}

// LoginRequest represents the login form.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Remember string `json:"remember" form:"remember"`
}

// HandleLoginPage renders the login form.
func (h *AuthHandler) HandleLoginPage(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "login", nil)
}

// HandleLogin checks the credentials, starts a session and sets its cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Debug().Err(err).Msg("unreadable login body")
		return submissionError(c, "login", "", services.ErrInvalidCredentials, nil)
	}
	req.Username = strings.TrimSpace(req.Username)

	user, err := h.authService.Authenticate(req.Username, req.Password)
	if err != nil {
		return submissionError(c, "login", "", err, fiber.Map{
			"form": fiber.Map{"username": req.Username},
		})
	}

	token, err := h.sessionService.StartSession(user, checked(strings.ToLower(req.Remember)))
	if err != nil {
		return submissionError(c, "login", "", err, nil)
	}
	h.setSessionCookie(c, token)

	middleware.AddFlash(c, flashSuccess, "Bienvenido, "+user.Username+".")
	return c.Redirect("/", fiber.StatusFound)
}

// HandleLogout ends the current session and clears the cookie. A stale or
// revoked cookie is cleared as well before the visitor is sent to log in.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	token := c.Cookies(middleware.SessionCookie)
	if d := auth.Authorize(middleware.CurrentPrincipal(c), auth.RequiresAuthenticated); !d.Allowed {
		if token != "" {
			middleware.ExpireCookie(c, middleware.SessionCookie)
		}
		return deny(c, d, msgLoginRequired)
	}

	if err := h.sessionService.EndSession(token); err != nil {
		log.Error().Err(err).Msg("failed to end session")
	}
	middleware.ExpireCookie(c, middleware.SessionCookie)
	middleware.AddFlash(c, flashInfo, "Has cerrado sesión.")
	return c.Redirect("/", fiber.StatusFound)
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token services.SessionToken) {
	cookie := &fiber.Cookie{
		Name:        middleware.SessionCookie,
		Value:       token.Value,
		Path:        "/",
		HTTPOnly:    true,
		Secure:      h.cookies.Secure,
		SameSite:    fiber.CookieSameSiteLaxMode,
		SessionOnly: !token.Persistent,
	}
	if token.Persistent {
		cookie.Expires = token.ExpiresAt
		cookie.MaxAge = int(time.Until(token.ExpiresAt).Seconds())
	}
	c.Cookie(cookie)
}
