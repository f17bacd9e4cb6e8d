package repositories

import (
	"fmt"
	"sort"
	"sync"

	"catalog/internal/models"
)

// MemoryProductRepository is an in-memory implementation of
// ProductRepository, used when no database is configured. Ids are
// assigned from a local counter, so listing by id preserves insertion
// order just like the SQL implementation.
type MemoryProductRepository struct {
	products map[uint]models.Product
	nextID   uint
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// All returns every product in insertion order.
func (r *MemoryProductRepository) All() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.Slice(productList, func(i, j int) bool {
		return productList[i].ID < productList[j].ID
	})
	return productList, nil
}

// Find returns a product by its id, or nil when absent.
func (r *MemoryProductRepository) Find(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

// FindByName returns all products whose name matches exactly.
func (r *MemoryProductRepository) FindByName(name string) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Name == name })
}

// FindByAvailability returns all products with the given availability.
func (r *MemoryProductRepository) FindByAvailability(available bool) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Available == available })
}

// FindByCategory returns all products in the given category.
func (r *MemoryProductRepository) FindByCategory(category models.Category) ([]models.Product, error) {
	return r.filter(func(p models.Product) bool { return p.Category == category })
}

// Create adds a new product and assigns its id.
func (r *MemoryProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product.ID = r.nextID
	r.nextID++
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(product *models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("cannot update product without an id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product %d not found for update", product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its id.
func (r *MemoryProductRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product %d not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

func (r *MemoryProductRepository) filter(match func(models.Product) bool) ([]models.Product, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	matched := []models.Product{}
	for _, p := range all {
		if match(p) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
