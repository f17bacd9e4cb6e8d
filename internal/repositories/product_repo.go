package repositories

import (
	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// Lookups are read-only; Find returns nil without an error when the
// id does not exist.
type ProductRepository interface {
	All() ([]models.Product, error)
	Find(id uint) (*models.Product, error)
	FindByName(name string) ([]models.Product, error)
	FindByAvailability(available bool) ([]models.Product, error)
	FindByCategory(category models.Category) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
}
