package handlers

import (
	"elpunto/internal/auth"
	"elpunto/internal/middleware"
	"elpunto/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the admin panel.
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes registers the admin routes.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/admin", h.HandlePanel)
	router.Post("/admin", h.HandleCreate)
}

// HandlePanel renders the empty event and product forms.
func (h *AdminHandler) HandlePanel(c *fiber.Ctx) error {
	if d := auth.Authorize(middleware.CurrentPrincipal(c), auth.RequiresAdmin); !d.Allowed {
		return deny(c, d, msgLoginRequired)
	}
	return render(c, fiber.StatusOK, "admin", nil)
}

// HandleCreate creates the event and/or product described by the form.
func (h *AdminHandler) HandleCreate(c *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(c)
	if d := auth.Authorize(principal, auth.RequiresAdmin); !d.Allowed {
		return deny(c, d, msgLoginRequired)
	}

	var form services.AdminForm
	if err := c.BodyParser(&form); err != nil {
		return submissionError(c, "admin", "", &services.ValidationError{Fields: map[string]string{"form": "Formulario no válido."}}, nil)
	}

	res, err := h.service.Create(principal, form)
	if err != nil {
		return submissionError(c, "admin", "", err, fiber.Map{"form": form})
	}

	middleware.AddFlash(c, flashSuccess, res.Message)
	return c.Redirect("/admin", fiber.StatusFound)
}
