package services

import (
	"errors"
	"time"

	"elpunto/internal/auth"
	"elpunto/internal/models"
	"elpunto/internal/repositories"
	"elpunto/internal/uploads"

	"github.com/rs/zerolog/log"
)

// GalleryForm is the text part of a gallery upload.
type GalleryForm struct {
	Description string `json:"descripcion" form:"descripcion" validate:"max=200"`
}

// GalleryService stores and lists gallery images.
type GalleryService struct {
	repo     repositories.GalleryRepository
	files    FileStore
	notifier Notifier
	now      func() time.Time
}

// NewGalleryService creates a new GalleryService.
func NewGalleryService(repo repositories.GalleryRepository, files FileStore, notifier Notifier) *GalleryService {
	return &GalleryService{repo: repo, files: files, notifier: notifier, now: time.Now}
}

// Images returns every image, newest first.
func (s *GalleryService) Images() ([]models.GalleryImage, error) {
	images, err := s.repo.Recent(0)
	if err != nil {
		return nil, persistenceError("list gallery images", err)
	}
	return images, nil
}

// Upload stores file under a timestamped name and records it. The file is
// removed again when the record cannot be written.
func (s *GalleryService) Upload(p auth.Principal, form GalleryForm, file *Upload) (Submission[*models.GalleryImage], error) {
	var out Submission[*models.GalleryImage]
	if err := authorize(p, auth.RequiresAuthenticated); err != nil {
		return out, err
	}

	verr := validateStruct(form)
	if verr == nil {
		verr = &ValidationError{}
	}
	if file == nil || file.Filename == "" {
		verr.Add("file", "Selecciona una imagen.")
	}
	if err := verr.OrNil(); err != nil {
		return out, err
	}

	stored, err := s.files.Accept(file.Content, file.Filename, uploads.TimestampNaming(s.now))
	if err != nil {
		if errors.Is(err, ErrUnsupportedFileType) {
			return out, err
		}
		return out, persistenceError("store gallery file", err)
	}

	image := &models.GalleryImage{Filename: stored, Description: form.Description, UploadedAt: s.now().UTC()}
	if err := s.repo.Create(image); err != nil {
		if rmErr := s.files.Remove(stored); rmErr != nil {
			log.Error().Err(rmErr).Str("file", stored).Msg("failed to remove orphaned upload")
		}
		return out, persistenceError("create gallery image", err)
	}

	log.Info().Str("image_id", image.ID).Str("file", stored).Str("uploader", p.Username).Msg("gallery image uploaded")
	notify(s.notifier, "gallery.image.created", map[string]interface{}{
		"id":       image.ID,
		"filename": image.Filename,
		"uploader": p.Username,
	})
	out.Record = image
	out.Message = "Imagen subida correctamente."
	return out, nil
}
