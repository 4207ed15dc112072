package handlers

import (
	"errors"
	"io/fs"
	"path/filepath"

	"elpunto/internal/uploads"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// FileHandler serves stored uploads by their exact stored name.
type FileHandler struct {
	store *uploads.Store
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(store *uploads.Store) *FileHandler {
	return &FileHandler{store: store}
}

// RegisterRoutes registers the uploads route.
func (h *FileHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/uploads/:filename", h.HandleFile)
}

// HandleFile streams one stored file. Unknown names and names with path
// components are 404.
func (h *FileHandler) HandleFile(c *fiber.Ctx) error {
	name := c.Params("filename")
	f, size, err := h.store.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, uploads.ErrInvalidName) {
			return notFound(c)
		}
		log.Error().Err(err).Str("file", name).Msg("failed to open upload")
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo leer el archivo.")
	}
	c.Type(filepath.Ext(name))
	return c.SendStream(f, int(size))
}
