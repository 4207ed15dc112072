package handlers

import (
	"elpunto/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PageHandler serves the public read-only pages.
type PageHandler struct {
	catalog  *services.CatalogService
	products *services.ProductService
	gallery  *services.GalleryService
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(catalog *services.CatalogService, products *services.ProductService, gallery *services.GalleryService) *PageHandler {
	return &PageHandler{catalog: catalog, products: products, gallery: gallery}
}

// RegisterRoutes registers the public pages.
func (h *PageHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/miembros", h.HandleMembers)
	router.Get("/eventos", h.HandleEvents)
	router.Get("/tienda", h.HandleStore)
	router.Get("/galeria", h.HandleGallery)
	router.Get("/producto/:id", h.HandleProduct)
}

// HandleHome renders the upcoming events, latest images and newest products.
func (h *PageHandler) HandleHome(c *fiber.Ctx) error {
	home, err := h.catalog.Home()
	if err != nil {
		return loadError(c, "index", err)
	}
	return render(c, fiber.StatusOK, "index", fiber.Map{
		"eventos":   home.Events,
		"imagenes":  home.Images,
		"productos": home.Products,
	})
}

// HandleMembers lists the registered members.
func (h *PageHandler) HandleMembers(c *fiber.Ctx) error {
	members, err := h.catalog.Members()
	if err != nil {
		return loadError(c, "miembros", err)
	}
	return render(c, fiber.StatusOK, "miembros", fiber.Map{"miembros": members})
}

// HandleEvents lists every event by date.
func (h *PageHandler) HandleEvents(c *fiber.Ctx) error {
	events, err := h.catalog.Events()
	if err != nil {
		return loadError(c, "eventos", err)
	}
	return render(c, fiber.StatusOK, "eventos", fiber.Map{"eventos": events})
}

// HandleStore lists the products.
func (h *PageHandler) HandleStore(c *fiber.Ctx) error {
	products, err := h.products.GetAllProducts()
	if err != nil {
		return loadError(c, "tienda", err)
	}
	return render(c, fiber.StatusOK, "tienda", fiber.Map{"productos": products})
}

// HandleGallery lists the gallery images, newest first.
func (h *PageHandler) HandleGallery(c *fiber.Ctx) error {
	images, err := h.gallery.Images()
	if err != nil {
		return loadError(c, "galeria", err)
	}
	return render(c, fiber.StatusOK, "galeria", fiber.Map{"imagenes": images})
}

// HandleProduct shows one product, or 404 when the id is unknown.
func (h *PageHandler) HandleProduct(c *fiber.Ctx) error {
	product, err := h.products.GetProductByID(c.Params("id"))
	if err != nil {
		return loadError(c, "producto", err)
	}
	return render(c, fiber.StatusOK, "producto", fiber.Map{"producto": product})
}
