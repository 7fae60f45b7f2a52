package catalog

import "catalog/internal/models"

// Status tracks where a listing is in its load cycle.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusFailed  Status = "failed"
)

// ListingState is the state a client holds for a product listing. It is a
// plain value: every update returns a new state and leaves the old one
// untouched.
type ListingState struct {
	Viewer   models.Viewer
	Query    string
	Products []models.Product
	Status   Status
	Err      error
}

// NewListingState returns an idle listing for viewer.
func NewListingState(viewer models.Viewer) ListingState {
	return ListingState{Viewer: viewer, Status: StatusIdle}
}

func (s ListingState) Loading() ListingState {
	s.Status = StatusLoading
	s.Err = nil
	return s
}

// Loaded replaces the products with a copy of products.
func (s ListingState) Loaded(products []models.Product) ListingState {
	s.Products = append([]models.Product(nil), products...)
	s.Status = StatusLoaded
	s.Err = nil
	return s
}

// Failed records err and keeps the products loaded so far.
func (s ListingState) Failed(err error) ListingState {
	s.Status = StatusFailed
	s.Err = err
	return s
}

func (s ListingState) WithQuery(query string) ListingState {
	s.Query = query
	return s
}

func (s ListingState) WithViewer(viewer models.Viewer) ListingState {
	s.Viewer = viewer
	return s
}

// ApplyProduct replaces the product with the same ID, or appends it when it
// is not in the listing yet. Used after an update, delete or restore.
func (s ListingState) ApplyProduct(p models.Product) ListingState {
	products := make([]models.Product, 0, len(s.Products)+1)
	replaced := false
	for _, existing := range s.Products {
		if existing.ID == p.ID {
			products = append(products, p)
			replaced = true
			continue
		}
		products = append(products, existing)
	}
	if !replaced {
		products = append(products, p)
	}
	s.Products = products
	return s
}

// Visible returns the products this listing shows its viewer.
func (s ListingState) Visible() []models.Product {
	return Search(VisibleTo(s.Products, s.Viewer), s.Query)
}
