package handlers

import (
	"elpunto/internal/auth"
	"elpunto/internal/middleware"
	"elpunto/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler shows and edits the signed-in user's profile.
type ProfileHandler struct {
	service *services.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// RegisterRoutes registers the profile routes.
func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/perfil", h.HandleProfile)
	router.Get("/editar_perfil", h.HandleEditPage)
	router.Post("/editar_perfil", h.HandleEdit)
}

// ProfileRequest is the edit form. Fields left out of the request are nil
// and keep their stored value.
type ProfileRequest struct {
	Username *string `json:"username" form:"username"`
	Email    *string `json:"email" form:"email"`
	Bio      *string `json:"bio" form:"bio"`
}

// HandleProfile renders the user's own profile.
func (h *ProfileHandler) HandleProfile(c *fiber.Ctx) error {
	return h.show(c, "perfil")
}

// HandleEditPage renders the edit form filled with the current values.
func (h *ProfileHandler) HandleEditPage(c *fiber.Ctx) error {
	return h.show(c, "editar_perfil")
}

func (h *ProfileHandler) show(c *fiber.Ctx, page string) error {
	principal := middleware.CurrentPrincipal(c)
	if d := auth.Authorize(principal, auth.RequiresAuthenticated); !d.Allowed {
		return deny(c, d, msgLoginRequired)
	}
	user, err := h.service.Get(principal)
	if err != nil {
		return loadError(c, page, err)
	}
	return render(c, fiber.StatusOK, page, fiber.Map{"usuario": user})
}

// HandleEdit applies the submitted changes and an optional new avatar.
func (h *ProfileHandler) HandleEdit(c *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(c)
	if d := auth.Authorize(principal, auth.RequiresAuthenticated); !d.Allowed {
		return deny(c, d, msgLoginRequired)
	}

	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return submissionError(c, "editar_perfil", "avatar", &services.ValidationError{Fields: map[string]string{"form": "Formulario no válido."}}, nil)
	}

	avatar, f, err := formUpload(c, "avatar")
	if err != nil {
		return submissionError(c, "editar_perfil", "avatar", err, nil)
	}
	if f != nil {
		defer f.Close()
	}

	res, err := h.service.Edit(principal, services.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
		Avatar:   avatar,
	})
	if err != nil {
		return submissionError(c, "editar_perfil", "avatar", err, fiber.Map{"form": req})
	}

	middleware.AddFlash(c, flashSuccess, res.Message)
	return c.Redirect("/perfil", fiber.StatusFound)
}
