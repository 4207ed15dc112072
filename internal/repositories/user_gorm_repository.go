package repositories

import (
	"fmt"

	"elpunto/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts a new user. A username or email collision yields ErrDuplicate.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, translate(err))
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username)
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.first("id = ?", id)
}

func (r *GORMUserRepository) first(query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, query, arg).Error; err != nil {
		return nil, fmt.Errorf("failed to get user (%s %s): %w", query, arg, translate(err))
	}
	return &user, nil
}

// Update writes every column of an existing user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(&models.User{}).Where("id = ?", user.ID).Select("*").Omit("created_at").Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user %s: %w", user.ID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, ErrNotFound)
	}
	return nil
}

// List returns all users, oldest members first.
func (r *GORMUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Order("created_at asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
