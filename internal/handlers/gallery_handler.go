package handlers

import (
	"elpunto/internal/auth"
	"elpunto/internal/middleware"
	"elpunto/internal/services"

	"github.com/gofiber/fiber/v2"
)

// GalleryHandler accepts gallery uploads from signed-in members.
type GalleryHandler struct {
	service *services.GalleryService
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(service *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{service: service}
}

// RegisterRoutes registers the upload routes.
func (h *GalleryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/subir_galeria", h.HandleUploadPage)
	router.Post("/subir_galeria", h.HandleUpload)
}

// HandleUploadPage renders the upload form.
func (h *GalleryHandler) HandleUploadPage(c *fiber.Ctx) error {
	if d := auth.Authorize(middleware.CurrentPrincipal(c), auth.RequiresAuthenticated); !d.Allowed {
		return deny(c, d, msgLoginRequired)
	}
	return render(c, fiber.StatusOK, "subir_galeria", nil)
}

// HandleUpload stores the image sent as "file" and sends the user to the
// gallery.
func (h *GalleryHandler) HandleUpload(c *fiber.Ctx) error {
	principal := middleware.CurrentPrincipal(c)
	if d := auth.Authorize(principal, auth.RequiresAuthenticated); !d.Allowed {
		return deny(c, d, msgLoginRequired)
	}

	var form services.GalleryForm
	if err := c.BodyParser(&form); err != nil {
		return submissionError(c, "subir_galeria", "file", &services.ValidationError{Fields: map[string]string{"file": "Formulario no válido."}}, nil)
	}

	upload, f, err := formUpload(c, "file")
	if err != nil {
		return submissionError(c, "subir_galeria", "file", err, nil)
	}
	if f != nil {
		defer f.Close()
	}

	res, err := h.service.Upload(principal, form, upload)
	if err != nil {
		return submissionError(c, "subir_galeria", "file", err, fiber.Map{
			"form": fiber.Map{"descripcion": form.Description},
		})
	}

	middleware.AddFlash(c, flashSuccess, res.Message)
	return c.Redirect("/galeria", fiber.StatusFound)
}
