package models

import "time"

// Product represents an item sold in the club store.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"nombre" gorm:"type:varchar(140);not null"`
	Description string    `json:"descripcion" gorm:"type:text"`
	Price       float64   `json:"precio" gorm:"not null;default:0"`
	Image       string    `json:"imagen" gorm:"type:varchar(200)"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
}
