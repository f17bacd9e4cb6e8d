package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
	auth    fiber.Handler
}

// NewProductHandler creates a new ProductHandler. The auth handler
// guards mutating routes; pass nil to leave them open.
func NewProductHandler(service *services.ProductService, auth fiber.Handler) *ProductHandler {
	if auth == nil {
		auth = func(c *fiber.Ctx) error { return c.Next() }
	}
	return &ProductHandler{
		service: service,
		auth:    auth,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", h.auth, h.HandleCreateProduct)
	productRoutes.Put("/:id", h.auth, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.auth, h.HandleDeleteProduct)
}

// HandleListProducts retrieves products, filtered by at most one of
// the name, category, or available query parameters.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	var products []models.Product
	var err error

	switch {
	case c.Query("name") != "":
		products, err = h.service.FindProductsByName(c.Query("name"))
	case c.Query("category") != "":
		var category models.Category
		category, err = models.ParseCategory(c.Query("category"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Unknown category %q", c.Query("category")),
			})
		}
		products, err = h.service.FindProductsByCategory(category)
	case c.Query("available") != "":
		var available bool
		available, err = strconv.ParseBool(c.Query("available"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Invalid boolean %q for available", c.Query("available")),
			})
		}
		products, err = h.service.FindProductsByAvailability(available)
	default:
		products, err = h.service.ListProducts()
	}

	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(products))
	for i := range products {
		results = append(results, products[i].Serialize())
	}
	return c.JSON(results)
}

// HandleGetProduct retrieves a single product by its id.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product id must be a positive integer",
		})
	}

	product, err := h.service.GetProduct(id)
	if err != nil {
		log.Printf("Error getting product %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with id %d not found", id),
		})
	}
	return c.JSON(product.Serialize())
}

// HandleCreateProduct creates a new product from the request body.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	data, err := decodeBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	var product models.Product
	if err := product.Deserialize(data); err != nil {
		return badRequestOrInternal(c, err)
	}

	if err := h.service.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return badRequestOrInternal(c, err)
	}

	c.Location(fmt.Sprintf("/api/v1/products/%d", product.ID))
	return c.Status(fiber.StatusCreated).JSON(product.Serialize())
}

// HandleUpdateProduct replaces the business attributes of an existing
// product. The id in the path wins; the body carries no id.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product id must be a positive integer",
		})
	}

	product, err := h.service.GetProduct(id)
	if err != nil {
		log.Printf("Error getting product %d for update: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	if product == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Product with id %d not found", id),
		})
	}

	data, err := decodeBody(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := product.Deserialize(data); err != nil {
		return badRequestOrInternal(c, err)
	}

	if err := h.service.UpdateProduct(product); err != nil {
		log.Printf("Error updating product %d: %v", id, err)
		return badRequestOrInternal(c, err)
	}
	return c.JSON(product.Serialize())
}

// HandleDeleteProduct removes a product by its id.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Product id must be a positive integer",
		})
	}

	if err := h.service.DeleteProduct(id); err != nil {
		log.Printf("Error deleting product %d: %v", id, err)
		if err.Error() == fmt.Sprintf("product %d not found for deletion", id) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with id %d not found", id),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete product",
			"error":   err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// parseID extracts the :id path parameter.
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// decodeBody decodes the request body into a generic value, keeping
// numbers as json.Number so decimal prices are not forced through a
// float64.
func decodeBody(c *fiber.Ctx) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(c.Body()))
	decoder.UseNumber()
	var data interface{}
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode request body: %w", err)
	}
	return data, nil
}

// badRequestOrInternal maps validation failures to 400 and everything
// else to 500.
func badRequestOrInternal(c *fiber.Ctx, err error) error {
	var validationErr *models.DataValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid product data",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Could not process product",
		"error":   err.Error(),
	})
}
