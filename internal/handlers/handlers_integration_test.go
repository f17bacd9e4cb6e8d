package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app backed by an in-memory SQLite database,
// mirroring the production wiring minus the broker.
func setupApp(t *testing.T, auth fiber.Handler) (*fiber.App, repositories.ProductRepository) {
	t.Helper()

	// Named in-memory database with a shared cache, so all pooled
	// connections see the same tables and each test gets its own db.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	repo := repositories.NewGORMProductRepository(db)
	service := services.NewProductService(repo, nil)
	handler := handlers.NewProductHandler(service, auth)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handler.RegisterRoutes(apiV1)
	return app, repo
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var reader io.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeMap(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var data map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	return data
}

func decodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var data []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	return data
}

func seedProduct(t *testing.T, repo repositories.ProductRepository, name string, available bool, category models.Category) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Description: "seeded for test",
		Price:       decimal.RequireFromString("9.99"),
		Available:   available,
		Category:    category,
	}
	require.NoError(t, repo.Create(product))
	return product
}

func TestCreateProduct(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/products", map[string]interface{}{
		"name":        "Fedora",
		"description": "A red hat",
		"price":       "12.50",
		"available":   true,
		"category":    "CLOTHS",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Location"))

	body := decodeMap(t, resp)
	assert.Equal(t, "Fedora", body["name"])
	assert.Equal(t, "A red hat", body["description"])
	assert.Equal(t, "12.5", body["price"])
	assert.Equal(t, true, body["available"])
	assert.Equal(t, "CLOTHS", body["category"])
	assert.NotZero(t, body["id"])

	// The created product is retrievable under the returned id.
	resp, err = app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/v1/products/%v", body["id"]), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	fetched := decodeMap(t, resp)
	assert.Equal(t, body["name"], fetched["name"])
	assert.Equal(t, body["price"], fetched["price"])
}

func TestCreateProductInvalidPayloads(t *testing.T) {
	app, _ := setupApp(t, nil)

	payloads := map[string]interface{}{
		"missing name": map[string]interface{}{
			"description": "A book", "price": "10.00", "available": true, "category": "FOOD",
		},
		"available not boolean": map[string]interface{}{
			"name": "Book", "description": "A book", "price": "10.00", "available": "yes", "category": "FOOD",
		},
		"unknown category": map[string]interface{}{
			"name": "Book", "description": "A book", "price": "10.00", "available": true, "category": "INVALID",
		},
		"body not an object": "not an object",
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/products", payload))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestListProducts(t *testing.T) {
	app, repo := setupApp(t, nil)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/v1/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeList(t, resp))

	seedProduct(t, repo, "Fedora", true, models.CategoryCloths)
	seedProduct(t, repo, "Hammer", true, models.CategoryTools)
	seedProduct(t, repo, "Granola", false, models.CategoryFood)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/products", nil))
	require.NoError(t, err)
	assert.Len(t, decodeList(t, resp), 3)
}

func TestListProductsFilters(t *testing.T) {
	app, repo := setupApp(t, nil)
	seedProduct(t, repo, "Fedora", true, models.CategoryCloths)
	seedProduct(t, repo, "Hammer", true, models.CategoryTools)
	seedProduct(t, repo, "Granola", false, models.CategoryFood)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/v1/products?name=Fedora", nil))
	require.NoError(t, err)
	byName := decodeList(t, resp)
	require.Len(t, byName, 1)
	assert.Equal(t, "Fedora", byName[0]["name"])

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/products?category=TOOLS", nil))
	require.NoError(t, err)
	byCategory := decodeList(t, resp)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "Hammer", byCategory[0]["name"])

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/products?available=false", nil))
	require.NoError(t, err)
	byAvailability := decodeList(t, resp)
	require.Len(t, byAvailability, 1)
	assert.Equal(t, "Granola", byAvailability[0]["name"])

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/products?category=BOOKS", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/products?available=maybe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetProductNotFound(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/v1/products/9999", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/v1/products/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateProduct(t *testing.T) {
	app, repo := setupApp(t, nil)
	product := seedProduct(t, repo, "Fedora", true, models.CategoryCloths)

	resp, err := app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/v1/products/%d", product.ID), map[string]interface{}{
		"name":        "Fedora",
		"description": "testing",
		"price":       "15.00",
		"available":   false,
		"category":    "CLOTHS",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeMap(t, resp)
	assert.Equal(t, float64(product.ID), body["id"])
	assert.Equal(t, "testing", body["description"])
	assert.Equal(t, false, body["available"])

	updated, err := repo.Find(product.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "testing", updated.Description)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("15.00")))
}

func TestUpdateProductNotFound(t *testing.T) {
	app, _ := setupApp(t, nil)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/v1/products/9999", map[string]interface{}{
		"name":        "Ghost",
		"description": "does not exist",
		"price":       "1.00",
		"available":   true,
		"category":    "UNKNOWN",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateProductInvalidPayload(t *testing.T) {
	app, repo := setupApp(t, nil)
	product := seedProduct(t, repo, "Fedora", true, models.CategoryCloths)

	resp, err := app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/v1/products/%d", product.ID), map[string]interface{}{
		"name": "Fedora",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDeleteProduct(t *testing.T) {
	app, repo := setupApp(t, nil)
	product := seedProduct(t, repo, "Fedora", true, models.CategoryCloths)

	resp, err := app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", product.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", product.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Deleting the same id again reports not found.
	resp, err = app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", product.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	const secret = "test_jwt_secret"
	app, repo := setupApp(t, middleware.AuthRequired(secret))
	product := seedProduct(t, repo, "Fedora", true, models.CategoryCloths)

	// Reads stay open.
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/v1/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Writes without a token are rejected.
	resp, err = app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", product.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// A signed token opens them up.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	req := jsonRequest(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", product.ID), nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
