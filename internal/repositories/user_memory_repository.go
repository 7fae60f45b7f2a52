package repositories

import (
	"fmt"
	"sync"
	"time"

	"catalog/internal/models"

	"github.com/google/uuid"
)

// InMemoryUserRepository is an in-memory implementation of UserRepository.
type InMemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
}

// NewInMemoryUserRepository creates a new instance of InMemoryUserRepository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user. Usernames and emails are unique.
func (r *InMemoryUserRepository) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return fmt.Errorf("failed to create user: username or email already in use")
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

// Update replaces an existing user.
func (r *InMemoryUserRepository) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrNotFound)
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

// GetByUsername returns a user by username.
func (r *InMemoryUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username }, "username", username)
}

// GetByEmail returns a user by email.
func (r *InMemoryUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email }, "email", email)
}

// GetByID returns a user by ID.
func (r *InMemoryUserRepository) GetByID(id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id }, "ID", id)
}

func (r *InMemoryUserRepository) find(match func(models.User) bool, label, value string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			user := u
			return &user, nil
		}
	}
	return nil, fmt.Errorf("user with %s %s: %w", label, value, ErrNotFound)
}
