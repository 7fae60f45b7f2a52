package services_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"catalog/internal/catalog"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, body []byte) error {
	args := m.Called(routingKey, body)
	return args.Error(0)
}

func ptr[T any](v T) *T { return &v }

func notFound(id string) error {
	return fmt.Errorf("product with ID %s: %w", id, repositories.ErrNotFound)
}

func catalogFixture() []models.Product {
	return []models.Product{
		{ID: "1", Title: "iPhone 15 Pro", Price: 1200, StockQuantity: 10, Lifecycle: models.LifecycleActive},
		{ID: "2", Title: "Samsung Galaxy", Price: 900, StockQuantity: 0, Lifecycle: models.LifecycleActive},
		{ID: "3", Title: "Old Phone", Price: 100, StockQuantity: 5, Lifecycle: models.LifecycleDeleted},
	}
}

func eventNamed(name string) interface{} {
	return mock.MatchedBy(func(body []byte) bool {
		var event services.ProductEvent
		return json.Unmarshal(body, &event) == nil && event.Event == name
	})
}

func TestProductService_ListProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, testLogger)

	mockRepo.On("GetAll").Return(catalogFixture(), nil)

	page, err := service.ListProducts(catalog.ListOptions{Viewer: models.ViewerUser})
	assert.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "iPhone 15 Pro", page.Products[0].Title)

	page, err = service.ListProducts(catalog.ListOptions{Viewer: models.ViewerAdmin})
	assert.NoError(t, err)
	assert.Len(t, page.Products, 3)

	page, err = service.ListProducts(catalog.ListOptions{Viewer: models.ViewerUser, Query: "phone"})
	assert.NoError(t, err)
	assert.Len(t, page.Products, 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProductsRepositoryError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, testLogger)

	mockRepo.On("GetAll").Return(nil, errors.New("database error")).Once()

	_, err := service.ListProducts(catalog.ListOptions{})
	assert.EqualError(t, err, "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_Summary(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, testLogger)

	mockRepo.On("GetAll").Return(catalogFixture(), nil).Once()

	summary, err := service.Summary()
	assert.NoError(t, err)
	assert.Equal(t, catalog.Summary{Total: 3, Available: 1, OutOfStock: 1, Deleted: 1}, summary)
}

func TestProductService_GetProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, testLogger)
	fixture := catalogFixture()

	mockRepo.On("GetByID", "1").Return(&fixture[0], nil).Once()
	product, err := service.GetProduct("1", models.ViewerUser)
	assert.NoError(t, err)
	assert.Equal(t, "iPhone 15 Pro", product.Title)

	// Deleted products are hidden from users but not from admins
	mockRepo.On("GetByID", "3").Return(&fixture[2], nil).Twice()
	_, err = service.GetProduct("3", models.ViewerUser)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	product, err = service.GetProduct("3", models.ViewerAdmin)
	assert.NoError(t, err)
	assert.True(t, product.IsDeleted())

	mockRepo.On("GetByID", "99").Return(nil, notFound("99")).Once()
	_, err = service.GetProduct("99", models.ViewerAdmin)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher, testLogger)

	input := models.ProductInput{
		Title:         ptr("iPhone 15 Pro"),
		Price:         ptr(1200.00),
		StockQuantity: ptr(50),
		Category:      ptr("smartphones"),
		Brand:         ptr("apple"),
	}

	mockRepo.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.Title == "iPhone 15 Pro" && p.Lifecycle == models.LifecycleActive && p.StockQuantity == 50
	})).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Product).ID = "new-id"
	}).Return(nil).Once()
	publisher.On("Publish", services.EventProductCreated, eventNamed(services.EventProductCreated)).Return(nil).Once()

	product, err := service.CreateProduct(input)
	assert.NoError(t, err)
	assert.Equal(t, "new-id", product.ID)
	assert.False(t, product.IsDeleted())
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)

	// Creation failure (e.g., database error)
	mockRepo.On("Create", mock.Anything).Return(fmt.Errorf("database error")).Once()
	_, err = service.CreateProduct(input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
	publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, testLogger)

	_, err := service.CreateProduct(models.ProductInput{Price: ptr(-1200.00)})

	var fieldErrs validation.Errors
	require.True(t, errors.As(err, &fieldErrs))
	assert.Contains(t, fieldErrs, "title")
	assert.Contains(t, fieldErrs, "price")
	assert.Contains(t, fieldErrs, "category")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_CreateProductPublishFailureIsNotFatal(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher, testLogger)

	mockRepo.On("Create", mock.Anything).Return(nil).Once()
	publisher.On("Publish", services.EventProductCreated, mock.Anything).Return(errors.New("channel closed")).Once()

	_, err := service.CreateProduct(models.ProductInput{
		Title: ptr("Keyboard"), Price: ptr(75.0), StockQuantity: ptr(25), Category: ptr("c"), Brand: ptr("b"),
	})
	assert.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher, testLogger)

	existing := &models.Product{ID: "1", Title: "iPhone 15 Pro", Price: 1200, StockQuantity: 50, Lifecycle: models.LifecycleActive}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Update", existing).Return(nil).Once()
	publisher.On("Publish", services.EventProductUpdated, eventNamed(services.EventProductUpdated)).Return(nil).Once()

	product, err := service.UpdateProduct("1", models.ProductInput{Title: ptr("iPhone 14 Pro Max"), StockQuantity: ptr(0)})
	assert.NoError(t, err)
	assert.Equal(t, "iPhone 14 Pro Max", product.Title)
	assert.Equal(t, 0, product.StockQuantity)
	assert.Equal(t, 1200.0, product.Price)
	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)

	// Update of a missing product
	mockRepo.On("GetByID", "99").Return(nil, notFound("99")).Once()
	_, err = service.UpdateProduct("99", models.ProductInput{Price: ptr(1400.0)})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Invalid patch never reaches the repository
	_, err = service.UpdateProduct("1", models.ProductInput{Price: ptr(0.0)})
	var fieldErrs validation.Errors
	assert.True(t, errors.As(err, &fieldErrs))
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProductEmptyPatch(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, testLogger)

	existing := &models.Product{ID: "1", Title: "iPhone", Lifecycle: models.LifecycleActive}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()

	product, err := service.UpdateProduct("1", models.ProductInput{})
	assert.NoError(t, err)
	assert.Equal(t, existing, product)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestProductService_DeleteAndRestore(t *testing.T) {
	mockRepo := new(MockProductRepository)
	publisher := new(MockPublisher)
	service := services.NewProductService(mockRepo, publisher, testLogger)

	stored := models.Product{ID: "1", Title: "Test Product for Deletion", StockQuantity: 10, Lifecycle: models.LifecycleActive}

	active := stored
	mockRepo.On("GetByID", "1").Return(&active, nil).Once()
	mockRepo.On("Update", mock.MatchedBy(func(p *models.Product) bool { return p.IsDeleted() })).Return(nil).Once()
	publisher.On("Publish", services.EventProductDeleted, eventNamed(services.EventProductDeleted)).Return(nil).Once()

	product, err := service.DeleteProduct("1")
	assert.NoError(t, err)
	assert.True(t, product.IsDeleted())

	deleted := stored
	deleted.Lifecycle = models.LifecycleDeleted
	mockRepo.On("GetByID", "1").Return(&deleted, nil).Once()
	mockRepo.On("Update", mock.MatchedBy(func(p *models.Product) bool { return !p.IsDeleted() })).Return(nil).Once()
	publisher.On("Publish", services.EventProductRestored, eventNamed(services.EventProductRestored)).Return(nil).Once()

	product, err = service.RestoreProduct("1")
	assert.NoError(t, err)
	assert.Equal(t, models.LifecycleActive, product.Lifecycle)

	mockRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestProductService_InvalidTransitions(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil, testLogger)

	deleted := &models.Product{ID: "1", Lifecycle: models.LifecycleDeleted}
	mockRepo.On("GetByID", "1").Return(deleted, nil).Once()
	_, err := service.DeleteProduct("1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	active := &models.Product{ID: "2", Lifecycle: models.LifecycleActive}
	mockRepo.On("GetByID", "2").Return(active, nil).Once()
	_, err = service.RestoreProduct("2")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	mockRepo.On("GetByID", "99").Return(nil, notFound("99")).Once()
	_, err = service.DeleteProduct("99")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	mockRepo.AssertExpectations(t)
}
