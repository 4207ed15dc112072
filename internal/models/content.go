package models

import "time"

// ForumMessage is a forum post. Messages are never edited or deleted.
type ForumMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Author    string    `json:"autor" gorm:"type:varchar(80)"`
	Content   string    `json:"contenido" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// GalleryImage points at an uploaded file in the upload directory.
type GalleryImage struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Filename    string    `json:"filename" gorm:"type:varchar(200);not null"`
	Description string    `json:"descripcion" gorm:"type:varchar(200)"`
	UploadedAt  time.Time `json:"uploaded_at" gorm:"index"`
}

// Event is a club event announced by an admin.
type Event struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string    `json:"titulo" gorm:"type:varchar(140);not null"`
	Description string    `json:"descripcion" gorm:"type:text"`
	Date        time.Time `json:"fecha" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
}

// All returns every model the application persists, for migrations.
func All() []interface{} {
	return []interface{}{
		&User{}, &Session{}, &ForumMessage{}, &GalleryImage{}, &Event{}, &Product{},
	}
}
