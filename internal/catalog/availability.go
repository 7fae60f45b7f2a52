package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"catalog/internal/models"
)

// VisibleTo returns the products the viewer may see, in input order.
// Admins see everything; users only see available products.
func VisibleTo(products []models.Product, viewer models.Viewer) []models.Product {
	if viewer == models.ViewerAdmin {
		return products
	}
	visible := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.IsAvailable() {
			visible = append(visible, p)
		}
	}
	return visible
}

// Search returns the products whose title contains query, ignoring case.
// A blank query returns products unchanged.
func Search(products []models.Product, query string) []models.Product {
	if strings.TrimSpace(query) == "" {
		return products
	}
	// A Caser keeps state between calls, so each search gets its own.
	fold := cases.Fold()
	needle := fold.String(query)

	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(fold.String(p.Title), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}
