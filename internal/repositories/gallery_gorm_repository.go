package repositories

import (
	"fmt"
	"time"

	"elpunto/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMGalleryRepository is a GORM implementation of GalleryRepository.
type GORMGalleryRepository struct {
	db *gorm.DB
}

// NewGORMGalleryRepository creates a new instance of GORMGalleryRepository.
func NewGORMGalleryRepository(db *gorm.DB) *GORMGalleryRepository {
	return &GORMGalleryRepository{db: db}
}

func (r *GORMGalleryRepository) Create(image *models.GalleryImage) error {
	if image.ID == "" {
		image.ID = uuid.New().String()
	}
	if image.UploadedAt.IsZero() {
		image.UploadedAt = time.Now().UTC()
	}
	if err := r.db.Create(image).Error; err != nil {
		return fmt.Errorf("failed to create gallery image: %w", translate(err))
	}
	return nil
}

func (r *GORMGalleryRepository) Recent(limit int) ([]models.GalleryImage, error) {
	var images []models.GalleryImage
	q := r.db.Order("uploaded_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list gallery images: %w", err)
	}
	return images, nil
}
