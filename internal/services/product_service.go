package services

import (
	"fmt"
	"log"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

// EventPublisher publishes product lifecycle events to the message
// broker. A nil publisher disables eventing.
type EventPublisher interface {
	PublishProductEvent(event string, payload map[string]interface{}) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// ListProducts retrieves all products.
func (s *ProductService) ListProducts() ([]models.Product, error) {
	return s.repo.All()
}

// GetProduct retrieves a single product by its id, nil when absent.
func (s *ProductService) GetProduct(id uint) (*models.Product, error) {
	return s.repo.Find(id)
}

// FindProductsByName retrieves products whose name matches exactly.
func (s *ProductService) FindProductsByName(name string) ([]models.Product, error) {
	return s.repo.FindByName(name)
}

// FindProductsByAvailability retrieves products by availability.
func (s *ProductService) FindProductsByAvailability(available bool) ([]models.Product, error) {
	return s.repo.FindByAvailability(available)
}

// FindProductsByCategory retrieves products in the given category.
func (s *ProductService) FindProductsByCategory(category models.Category) ([]models.Product, error) {
	return s.repo.FindByCategory(category)
}

// CreateProduct validates and persists a new product, then publishes
// a product.created event.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.publish("product.created", product.Serialize())
	return nil
}

// UpdateProduct validates and persists changes to an existing
// product, then publishes a product.updated event.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("cannot update product without an id")
	}
	if err := product.Validate(); err != nil {
		return err
	}
	if err := s.repo.Update(product); err != nil {
		return err
	}
	s.publish("product.updated", product.Serialize())
	return nil
}

// DeleteProduct removes a product, then publishes a product.deleted
// event carrying the id.
func (s *ProductService) DeleteProduct(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publish("product.deleted", map[string]interface{}{"id": id})
	return nil
}

// publish sends an event when a publisher is configured. Publishing
// failures are logged, not surfaced: the catalog write already
// succeeded and must not be rolled back over a broker hiccup.
func (s *ProductService) publish(event string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
