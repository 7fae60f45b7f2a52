package repositories

import (
	"fmt"
	"sync"
	"time"

	"catalog/internal/models"

	"github.com/google/uuid"
)

// InMemoryProductRepository is an in-memory implementation of
// ProductRepository that keeps products in insertion order.
type InMemoryProductRepository struct {
	products []models.Product
	index    map[string]int
	mu       sync.RWMutex
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		index: make(map[string]int),
	}
}

// GetAll returns a copy of all products.
func (r *InMemoryProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, clone(p))
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *InMemoryProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	product := clone(r.products[i])
	return &product, nil
}

// Create adds a new product.
func (r *InMemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if _, exists := r.index[product.ID]; exists {
		return fmt.Errorf("failed to create product: duplicate ID %s", product.ID)
	}
	if product.Lifecycle == "" {
		product.Lifecycle = models.LifecycleActive
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	r.index[product.ID] = len(r.products)
	r.products = append(r.products, clone(*product))
	return nil
}

// Update replaces an existing product.
func (r *InMemoryProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	product.CreatedAt = r.products[i].CreatedAt
	product.UpdatedAt = time.Now()
	r.products[i] = clone(*product)
	return nil
}

// clone copies p so callers never share the images slice with the store.
func clone(p models.Product) models.Product {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	return p
}
