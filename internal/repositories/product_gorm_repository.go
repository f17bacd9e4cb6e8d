package repositories

import (
	"errors"
	"fmt"

	"catalog/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// Each call runs in its own session owned by the GORM connection pool.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// All retrieves every product, ordered by id. For a monotonically
// assigned primary key this matches insertion order.
func (r *GORMProductRepository) All() ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Find retrieves a single product by its id. A missing id is not an
// error: the result is simply nil.
func (r *GORMProductRepository) Find(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product %d: %w", id, err)
	}
	return &product, nil
}

// FindByName retrieves all products whose name matches exactly.
func (r *GORMProductRepository) FindByName(name string) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.Where("name = ?", name).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by name %q: %w", name, err)
	}
	return products, nil
}

// FindByAvailability retrieves all products with the given availability.
func (r *GORMProductRepository) FindByAvailability(available bool) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.Where("available = ?", available).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by availability %t: %w", available, err)
	}
	return products, nil
}

// FindByCategory retrieves all products in the given category.
func (r *GORMProductRepository) FindByCategory(category models.Category) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.Where("category = ?", category.String()).Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find products by category %s: %w", category, err)
	}
	return products, nil
}

// Create persists a new product. The database assigns the id, which
// GORM writes back into the struct.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update persists changes to an existing product. A product that was
// never created has no id to address, so that is an error.
func (r *GORMProductRepository) Update(product *models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("cannot update product without an id")
	}
	res := r.db.Save(product) // Save writes all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save does not return ErrRecordNotFound when the row
		// is gone, so check RowsAffected.
		return fmt.Errorf("product %d not found for update", product.ID)
	}
	return nil
}

// Delete removes a product by its id.
func (r *GORMProductRepository) Delete(id uint) error {
	res := r.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d not found for deletion", id)
	}
	return nil
}
