package services

import (
	"fmt"

	"catalog/internal/catalog"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/validation"

	"github.com/sirupsen/logrus"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *validation.Validator
	events    EventPublisher
	log       *logrus.Logger
}

// NewProductService creates a new ProductService. events may be nil, in
// which case lifecycle events are not published.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, logger *logrus.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: validation.New(),
		events:    events,
		log:       logger,
	}
}

// ListProducts returns the page of products opts selects for its viewer.
func (s *ProductService) ListProducts(opts catalog.ListOptions) (catalog.Page, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return catalog.Page{}, err
	}
	page := catalog.List(products, opts)
	s.log.WithFields(logrus.Fields{
		"viewer":   opts.Viewer.String(),
		"query":    opts.Query,
		"returned": len(page.Products),
		"total":    page.Total,
	}).Debug("Listed products")
	return page, nil
}

// Summary counts all products by availability.
func (s *ProductService) Summary() (catalog.Summary, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return catalog.Summary{}, err
	}
	return catalog.Summarize(products), nil
}

// GetProduct retrieves a single product. A product the viewer may not see
// is reported as not found.
func (s *ProductService) GetProduct(id string, viewer models.Viewer) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if len(catalog.VisibleTo([]models.Product{*product}, viewer)) == 0 {
		return nil, fmt.Errorf("product with ID %s: %w", id, repositories.ErrNotFound)
	}
	return product, nil
}

// CreateProduct validates input and stores it as a new active product.
func (s *ProductService) CreateProduct(input models.ProductInput) (*models.Product, error) {
	if err := s.validator.ValidateCreate(input); err != nil {
		s.log.WithError(err).Warn("Rejected product create")
		return nil, err
	}

	product := &models.Product{Lifecycle: models.LifecycleActive}
	input.Apply(product)
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": product.ID, "title": product.Title}).Info("Product created")
	s.publish(EventProductCreated, product)
	return product, nil
}

// UpdateProduct applies the sent fields of input to an existing product.
// Deleted products can be edited; their lifecycle is left alone.
func (s *ProductService) UpdateProduct(id string, input models.ProductInput) (*models.Product, error) {
	if err := s.validator.ValidatePatch(input); err != nil {
		s.log.WithError(err).WithField("product_id", id).Warn("Rejected product update")
		return nil, err
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return product, nil
	}

	input.Apply(product)
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.log.WithField("product_id", id).Info("Product updated")
	s.publish(EventProductUpdated, product)
	return product, nil
}

// DeleteProduct soft-deletes an active product.
func (s *ProductService) DeleteProduct(id string) (*models.Product, error) {
	return s.transition(id, (*models.Product).Delete, EventProductDeleted)
}

// RestoreProduct brings a soft-deleted product back.
func (s *ProductService) RestoreProduct(id string) (*models.Product, error) {
	return s.transition(id, (*models.Product).Restore, EventProductRestored)
}

func (s *ProductService) transition(id string, change func(*models.Product) error, event string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := change(product); err != nil {
		return nil, err
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"product_id": id, "lifecycle": product.Lifecycle}).Info("Product lifecycle changed")
	s.publish(event, product)
	return product, nil
}

// publish sends a lifecycle event. Failures are logged and never fail the
// request that caused them.
func (s *ProductService) publish(event string, product *models.Product) {
	if s.events == nil {
		return
	}
	body, err := NewProductEvent(event, product).Encode()
	if err != nil {
		s.log.WithError(err).Error("Failed to encode product event")
		return
	}
	if err := s.events.Publish(event, body); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": event, "product_id": product.ID}).
			Warn("Failed to publish product event")
	}
}
