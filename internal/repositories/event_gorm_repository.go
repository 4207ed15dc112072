package repositories

import (
	"fmt"
	"time"

	"elpunto/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMEventRepository is a GORM implementation of EventRepository.
type GORMEventRepository struct {
	db *gorm.DB
}

// NewGORMEventRepository creates a new instance of GORMEventRepository.
func NewGORMEventRepository(db *gorm.DB) *GORMEventRepository {
	return &GORMEventRepository{db: db}
}

func (r *GORMEventRepository) Create(event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", translate(err))
	}
	return nil
}

func (r *GORMEventRepository) All() ([]models.Event, error) {
	var events []models.Event
	if err := r.db.Order("date asc").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *GORMEventRepository) Upcoming(from time.Time, limit int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("date >= ?", from).Order("date asc").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}
