package repositories

import "elpunto/internal/models"

// ForumRepository defines the interface for forum message data access.
// Messages are append-only.
type ForumRepository interface {
	Create(message *models.ForumMessage) error
	// Recent returns messages newest first.
	Recent() ([]models.ForumMessage, error)
}
