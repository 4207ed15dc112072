package repositories

import (
	"fmt"
	"time"

	"elpunto/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMForumRepository is a GORM implementation of ForumRepository.
type GORMForumRepository struct {
	db *gorm.DB
}

// NewGORMForumRepository creates a new instance of GORMForumRepository.
func NewGORMForumRepository(db *gorm.DB) *GORMForumRepository {
	return &GORMForumRepository{db: db}
}

func (r *GORMForumRepository) Create(message *models.ForumMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("failed to create forum message: %w", translate(err))
	}
	return nil
}

func (r *GORMForumRepository) Recent() ([]models.ForumMessage, error) {
	var messages []models.ForumMessage
	if err := r.db.Order("created_at desc").Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list forum messages: %w", err)
	}
	return messages, nil
}
