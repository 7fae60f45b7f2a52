package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Lifecycle is the soft-delete state of a product. A product is never
// removed from storage; it moves between active and deleted.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleDeleted Lifecycle = "deleted"
)

// ErrInvalidTransition is returned when a lifecycle change does not apply
// to the product's current state.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Product represents a product in the catalog.
type Product struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title              string    `json:"title" gorm:"type:varchar(100);not null"`
	Description        string    `json:"description"`
	Price              float64   `json:"price" gorm:"not null"`
	DiscountPercentage float64   `json:"discountPercentage"`
	StockQuantity      int       `json:"stockQuantity" gorm:"not null;default:0"`
	Category           string    `json:"category" gorm:"type:varchar(64);index"`
	Brand              string    `json:"brand" gorm:"type:varchar(64);index"`
	Thumbnail          string    `json:"thumbnail"`
	Images             []string  `json:"images" gorm:"serializer:json"`
	Lifecycle          Lifecycle `json:"lifecycle" gorm:"type:varchar(16);not null;default:active;index"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// IsDeleted reports whether the product has been soft-deleted.
func (p Product) IsDeleted() bool {
	return p.Lifecycle == LifecycleDeleted
}

// IsAvailable reports whether a standard user may see the product.
// Anything other than an active lifecycle with stock on hand is hidden.
func (p Product) IsAvailable() bool {
	return p.StockQuantity > 0 && p.Lifecycle == LifecycleActive
}

// Delete moves an active product to the deleted state.
func (p *Product) Delete() error {
	if p.Lifecycle != LifecycleActive {
		return fmt.Errorf("cannot delete product %s in state %q: %w", p.ID, p.Lifecycle, ErrInvalidTransition)
	}
	p.Lifecycle = LifecycleDeleted
	return nil
}

// Restore moves a deleted product back to the active state.
func (p *Product) Restore() error {
	if p.Lifecycle != LifecycleDeleted {
		return fmt.Errorf("cannot restore product %s in state %q: %w", p.ID, p.Lifecycle, ErrInvalidTransition)
	}
	p.Lifecycle = LifecycleActive
	return nil
}

// MarshalJSON adds the derived isDeleted flag expected by existing clients.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		IsDeleted bool `json:"isDeleted"`
	}{product(p), p.IsDeleted()})
}
