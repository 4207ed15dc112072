package models

import "time"

const (
	DefaultAvatar = "default_avatar.png"
	DefaultBio    = "Este usuario no tiene biografía."
)

// User represents a registered club member.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(80);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(120);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(200);not null"` // Never serialized
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
	Avatar       string    `json:"avatar" gorm:"type:varchar(200);not null"`
	Bio          string    `json:"bio" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the server-side record behind a session token.
type Session struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"index;type:varchar(36);not null"`
	Remember  bool       `json:"remember"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	RevokedAt *time.Time `json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Active reports whether the session can still authenticate requests at now.
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
