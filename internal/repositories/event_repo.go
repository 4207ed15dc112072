package repositories

import (
	"time"

	"elpunto/internal/models"
)

// EventRepository defines the interface for event data access.
type EventRepository interface {
	Create(event *models.Event) error
	// All returns every event ordered by date.
	All() ([]models.Event, error)
	// Upcoming returns up to limit events dated at or after from.
	Upcoming(from time.Time, limit int) ([]models.Event, error)
}
