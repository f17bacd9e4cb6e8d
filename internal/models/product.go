package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. The ID is assigned by
// the persistence layer on first create; a zero ID means the product
// has never been persisted. Price is an exact decimal so monetary
// values survive round trips without floating point drift.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"type:varchar(100);not null" validate:"required"`
	Description string          `json:"description" gorm:"type:varchar(250);not null" validate:"required"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null" validate:"required"`
	Available   bool            `json:"available" gorm:"not null"`
	Category    Category        `json:"category" gorm:"type:varchar(63);not null"`
}

var validate = validator.New()

// TableName pins the table name so migrations and raw queries agree.
func (p *Product) TableName() string {
	return "products"
}

// String renders a short reference for log lines and test failures.
func (p *Product) String() string {
	return fmt.Sprintf("<Product %s id=[%d]>", p.Name, p.ID)
}

// Validate checks the product's field constraints before it is handed
// to the repository.
func (p *Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return NewDataValidationError("%v", err)
	}
	if !p.Category.Valid() {
		return NewDataValidationError("unknown category %d", int(p.Category))
	}
	return nil
}

// Serialize converts the product into its external key-value form,
// the inverse of Deserialize. Price is rendered as a string so the
// exact decimal value survives JSON encoding.
func (p *Product) Serialize() map[string]interface{} {
	return map[string]interface{}{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price.String(),
		"available":   p.Available,
		"category":    p.Category.String(),
	}
}

// Deserialize populates the product from an external key-value
// representation, typically a decoded JSON body. All five business
// fields are required and strictly typed; nothing is defaulted. Any
// problem is reported as a DataValidationError and the product is
// left untouched.
func (p *Product) Deserialize(data interface{}) error {
	fields, ok := data.(map[string]interface{})
	if !ok {
		return NewDataValidationError("body must be a mapping, got %T", data)
	}

	name, err := stringField(fields, "name")
	if err != nil {
		return err
	}
	description, err := stringField(fields, "description")
	if err != nil {
		return err
	}

	rawPrice, ok := fields["price"]
	if !ok {
		return NewDataValidationError("missing price")
	}
	price, err := parsePrice(rawPrice)
	if err != nil {
		return err
	}

	rawAvailable, ok := fields["available"]
	if !ok {
		return NewDataValidationError("missing available")
	}
	available, ok := rawAvailable.(bool)
	if !ok {
		return NewDataValidationError("invalid type for boolean [available]: %T", rawAvailable)
	}

	categoryName, err := stringField(fields, "category")
	if err != nil {
		return err
	}
	category, err := ParseCategory(categoryName)
	if err != nil {
		return NewDataValidationError("%v", err)
	}

	p.Name = name
	p.Description = description
	p.Price = price
	p.Available = available
	p.Category = category
	return nil
}

// stringField extracts a required string-typed field.
func stringField(fields map[string]interface{}, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", NewDataValidationError("missing %s", key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", NewDataValidationError("invalid type for string [%s]: %T", key, raw)
	}
	return value, nil
}

// parsePrice accepts the numeric shapes a decoded JSON body can carry
// and converts them to an exact decimal.
func parsePrice(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		price, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, NewDataValidationError("invalid price %q", v)
		}
		return price, nil
	case json.Number:
		price, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, NewDataValidationError("invalid price %q", v.String())
		}
		return price, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case decimal.Decimal:
		return v, nil
	default:
		return decimal.Zero, NewDataValidationError("invalid type for price: %T", raw)
	}
}
