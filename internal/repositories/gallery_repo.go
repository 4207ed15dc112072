package repositories

import "elpunto/internal/models"

// GalleryRepository defines the interface for gallery image data access.
type GalleryRepository interface {
	Create(image *models.GalleryImage) error
	// Recent returns up to limit images newest first; limit <= 0 means all.
	Recent(limit int) ([]models.GalleryImage, error)
}
