package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"catalog/internal/catalog"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"
	"catalog/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultPageSize = 20

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	log      *logrus.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		log:      logger,
	}
}

// RegisterRoutes registers the product routes. Reads are open to everyone;
// writes need an admin token.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authService *services.AuthService) {
	optionalAuth := middleware.OptionalAuth(authService)
	authRequired := middleware.AuthRequired(authService, h.log)
	adminRequired := middleware.AdminRequired()
	adminOnly := func(handler fiber.Handler) []fiber.Handler {
		return []fiber.Handler{authRequired, adminRequired, handler}
	}

	productRoutes := router.Group("/products")
	productRoutes.Get("/", optionalAuth, h.HandleListProducts)
	productRoutes.Get("/summary", adminOnly(h.HandleSummary)...)
	productRoutes.Get("/:id", optionalAuth, h.HandleGetProduct)
	productRoutes.Post("/", adminOnly(h.HandleCreateProduct)...)
	productRoutes.Patch("/undelete/:id", adminOnly(h.HandleRestoreProduct)...)
	productRoutes.Patch("/:id", adminOnly(h.HandleUpdateProduct)...)
	productRoutes.Delete("/:id", adminOnly(h.HandleDeleteProduct)...)
}

// listQuery holds the query string of GET /products.
type listQuery struct {
	Search   string `query:"search" validate:"max=100"`
	User     bool   `query:"user"`
	Category string `query:"category" validate:"max=64"`
	Brand    string `query:"brand" validate:"max=64"`
	Sort     string `query:"sort" validate:"omitempty,oneof=price"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc"`
	Page     int    `query:"page" validate:"gte=0"`
	Limit    int    `query:"limit" validate:"gte=0,lte=100"`
}

// viewer resolves who the listing is for. Admin tokens see everything
// unless the caller asks for the user view with ?user=true.
func viewer(c *fiber.Ctx, userView bool) models.Viewer {
	if middleware.IsAdmin(c) && !userView {
		return models.ViewerAdmin
	}
	return models.ViewerUser
}

// HandleListProducts returns the products visible to the caller.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	var q listQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"errors":  fieldMessages(err),
		})
	}

	opts := catalog.ListOptions{
		Viewer:      viewer(c, q.User),
		Query:       q.Search,
		Category:    q.Category,
		Brand:       q.Brand,
		SortByPrice: q.Sort == "price",
		Descending:  q.Order == "desc",
		Page:        q.Page,
		Limit:       q.Limit,
	}
	if opts.Page > 0 && opts.Limit == 0 {
		opts.Limit = defaultPageSize
	}
	if opts.Limit > 0 && opts.Page == 0 {
		opts.Page = 1
	}

	page, err := h.service.ListProducts(opts)
	if err != nil {
		return h.respondError(c, err, "fetching products")
	}
	c.Set("X-Total-Count", strconv.Itoa(page.Total))
	return c.JSON(page.Products)
}

// HandleSummary returns product counts by availability.
func (h *ProductHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary()
	if err != nil {
		return h.respondError(c, err, "summarizing products")
	}
	return c.JSON(summary)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	userView, err := userQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}
	product, err := h.service.GetProduct(id, viewer(c, userView))
	if err != nil {
		return h.respondError(c, err, "fetching product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.CreateProduct(input)
	if err != nil {
		return h.respondError(c, err, "adding product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	var input models.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return invalidBody(c, err)
	}

	product, err := h.service.UpdateProduct(id, input)
	if err != nil {
		return h.respondError(c, err, "updating product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct soft-deletes a product and returns it.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	product, err := h.service.DeleteProduct(id)
	if err != nil {
		return h.respondError(c, err, "deleting product")
	}
	return c.JSON(product)
}

// HandleRestoreProduct undoes a soft delete and returns the product.
func (h *ProductHandler) HandleRestoreProduct(c *fiber.Ctx) error {
	id, ok := productID(c)
	if !ok {
		return invalidID(c)
	}
	product, err := h.service.RestoreProduct(id)
	if err != nil {
		return h.respondError(c, err, "restoring product")
	}
	return c.JSON(product)
}

// respondError maps service errors to client or server errors.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error, action string) error {
	var fieldErrs validation.Errors
	switch {
	case errors.As(err, &fieldErrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  fieldErrs,
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
			"error":   err.Error(),
		})
	case errors.Is(err, models.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Error " + action,
			"error":   err.Error(),
		})
	}

	h.log.WithError(err).WithField("path", c.Path()).Error("Error " + action)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Error " + action,
		"error":   err.Error(),
	})
}

// userQuery parses the optional user flag. An absent flag is false.
func userQuery(c *fiber.Ctx) (bool, error) {
	raw := c.Query("user")
	if raw == "" {
		return false, nil
	}
	userView, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("user must be a boolean, got %q", raw)
	}
	return userView, nil
}

func productID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid product ID",
		"error":   "product ID must be a UUID, got " + strconv.Quote(c.Params("id")),
	})
}

func invalidBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}
