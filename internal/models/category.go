package models

import (
	"database/sql/driver"
	"fmt"
)

// Category classifies a product. The member set is closed: values
// arriving from the outside must go through ParseCategory, which
// rejects anything it does not know.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryCloths
	CategoryFood
	CategoryHousewares
	CategoryAutomotive
	CategoryTools
)

var categoryNames = map[Category]string{
	CategoryUnknown:    "UNKNOWN",
	CategoryCloths:     "CLOTHS",
	CategoryFood:       "FOOD",
	CategoryHousewares: "HOUSEWARES",
	CategoryAutomotive: "AUTOMOTIVE",
	CategoryTools:      "TOOLS",
}

var categoriesByName = func() map[string]Category {
	byName := make(map[string]Category, len(categoryNames))
	for category, name := range categoryNames {
		byName[name] = category
	}
	return byName
}()

// Categories returns every member of the enumeration.
func Categories() []Category {
	return []Category{
		CategoryUnknown,
		CategoryCloths,
		CategoryFood,
		CategoryHousewares,
		CategoryAutomotive,
		CategoryTools,
	}
}

// ParseCategory resolves a member name like "FOOD" to its Category.
// Unknown names are an error, never coerced to CategoryUnknown.
func ParseCategory(name string) (Category, error) {
	category, ok := categoriesByName[name]
	if !ok {
		return CategoryUnknown, fmt.Errorf("unknown category %q", name)
	}
	return category, nil
}

// String returns the member name, e.g. "TOOLS".
func (c Category) String() string {
	name, ok := categoryNames[c]
	if !ok {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return name
}

// Valid reports whether c is a member of the enumeration.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// Value stores the member name in the database column.
func (c Category) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot store invalid category %d", int(c))
	}
	return c.String(), nil
}

// Scan reads a member name back out of the database column.
func (c *Category) Scan(value interface{}) error {
	var name string
	switch v := value.(type) {
	case string:
		name = v
	case []byte:
		name = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Category", value)
	}
	category, err := ParseCategory(name)
	if err != nil {
		return err
	}
	*c = category
	return nil
}
