package repositories

import (
	"errors"
	"fmt"

	"catalog/internal/models"

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

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update writes every column of an existing user.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(user).Select("*").Omit("created_at").Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	return nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username, "username")
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email, "email")
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.first("id = ?", id, "ID")
}

func (r *GORMUserRepository) first(query, value, label string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, query, value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with %s %s: %w", label, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %s: %w", label, value, err)
	}
	return &user, nil
}
