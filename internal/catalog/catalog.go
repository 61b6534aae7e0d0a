package catalog

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
)

// ErrProductNotFound is the cause of every FindByCode miss.
var ErrProductNotFound = errors.New("product not found")

// Catalog is a read-only, insertion-ordered product set.
type Catalog struct {
	products []Product
	byCode   map[string]int
}

// New validates the products and freezes them in the given order.
func New(products ...Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byCode:   make(map[string]int, len(products)),
	}
	for _, p := range products {
		if err := p.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byCode[p.Code]; dup {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate product code %s", p.Code))
		}
		c.byCode[p.Code] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Default returns the storefront's six demo products.
func Default() *Catalog {
	c, err := New(defaultProducts()...)
	if err != nil {
		panic(fmt.Sprintf("default catalog invalid: %v", err))
	}
	return c
}

func defaultProducts() []Product {
	return []Product{
		{Code: "P001", Description: "Fresh Apples", Price: decimal.RequireFromString("5.99"), Unit: "kg", AvailableQty: 10},
		{Code: "P002", Description: "Organic Bananas", Price: decimal.RequireFromString("3.49"), Unit: "kg", AvailableQty: 15},
		{Code: "P003", Description: "Whole Wheat Bread", Price: decimal.RequireFromString("1.99"), Unit: "unit", AvailableQty: 20},
		{Code: "P004", Description: "Fresh Milk", Price: decimal.RequireFromString("2.89"), Unit: "liter", AvailableQty: 12},
		{Code: "P005", Description: "Chicken Breast", Price: decimal.RequireFromString("6.49"), Unit: "kg", AvailableQty: 8},
		{Code: "P006", Description: "Beef Mince", Price: decimal.RequireFromString("4.99"), Unit: "kg", AvailableQty: 10},
	}
}

// FindByCode resolves a product; unknown codes fail with NOT_FOUND.
func (c *Catalog) FindByCode(code string) (Product, error) {
	idx, ok := c.byCode[code]
	if !ok {
		return Product{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrProductNotFound, fmt.Sprintf("product %s not found", code)).
			WithDetails(map[string]any{"product_code": code})
	}
	return c.products[idx], nil
}

// All returns a copy of every product in insertion order.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len reports the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// Search is shorthand for Filter(c, query).
func (c *Catalog) Search(query string) []Product {
	return Filter(c, query)
}
