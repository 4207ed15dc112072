package repositories

import (
	"time"

	"elpunto/internal/models"
)

// SessionRepository defines the interface for session data access.
type SessionRepository interface {
	Create(session *models.Session) error
	GetByID(id string) (*models.Session, error)
	// Revoke marks a session revoked at the given time. Revoking an unknown
	// or already revoked session is not an error.
	Revoke(id string, at time.Time) error
}
