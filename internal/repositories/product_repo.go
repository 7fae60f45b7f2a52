package repositories

import (
	"errors"

	"catalog/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no record.
var ErrNotFound = errors.New("not found")

// ProductRepository defines the interface for product data access.
// Products are never removed; soft deletion is an Update of the lifecycle.
type ProductRepository interface {
	// GetAll returns every product, oldest first.
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
}
