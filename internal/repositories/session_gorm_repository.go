package repositories

import (
	"fmt"
	"time"

	"elpunto/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{db: db}
}

func (r *GORMSessionRepository) Create(session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", translate(err))
	}
	return nil
}

func (r *GORMSessionRepository) GetByID(id string) (*models.Session, error) {
	var session models.Session
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, translate(err))
	}
	return &session, nil
}

func (r *GORMSessionRepository) Revoke(id string, at time.Time) error {
	err := r.db.Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to revoke session %s: %w", id, err)
	}
	return nil
}
