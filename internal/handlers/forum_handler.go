package handlers

import (
	"elpunto/internal/auth"
	"elpunto/internal/middleware"
	"elpunto/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ForumHandler serves the forum page and accepts new messages.
type ForumHandler struct {
	service *services.ForumService
}

// NewForumHandler creates a new ForumHandler.
func NewForumHandler(service *services.ForumService) *ForumHandler {
	return &ForumHandler{service: service}
}

// RegisterRoutes registers the forum routes.
func (h *ForumHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/foro", h.HandleList)
	router.Post("/foro", h.HandlePost)
}

// HandleList renders every message, newest first. Anyone may read.
func (h *ForumHandler) HandleList(c *fiber.Ctx) error {
	messages, err := h.service.Messages()
	if err != nil {
		return loadError(c, "foro", err)
	}
	return render(c, fiber.StatusOK, "foro", fiber.Map{"mensajes": messages})
}

// HandlePost appends a message as the signed-in user.
func (h *ForumHandler) HandlePost(c *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(c)
	if d := auth.Authorize(principal, auth.RequiresAuthenticated); !d.Allowed {
		return deny(c, d, msgPostLogin)
	}

	var form services.ForumForm
	if err := c.BodyParser(&form); err != nil {
		return h.rerender(c, &services.ValidationError{Fields: map[string]string{"contenido": "Formulario no válido."}}, form)
	}

	res, err := h.service.Post(principal, form)
	if err != nil {
		return h.rerender(c, err, form)
	}

	middleware.AddFlash(c, flashSuccess, res.Message)
	return c.Redirect("/foro", fiber.StatusFound)
}

func (h *ForumHandler) rerender(c *fiber.Ctx, err error, form services.ForumForm) error {
	data := fiber.Map{"form": fiber.Map{"contenido": form.Content}}
	if messages, lerr := h.service.Messages(); lerr == nil {
		data["mensajes"] = messages
	}
	return submissionError(c, "foro", "", err, data)
}
