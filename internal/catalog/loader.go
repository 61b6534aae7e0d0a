package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	UOM         string `yaml:"uom"`
	Qty         int    `yaml:"qty"`
}

// LoadFile builds a catalog from a YAML seed file. An empty path returns Default().
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML seed document.
func Parse(raw []byte) (*Catalog, error) {
	var seed seedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}

	products := make([]Product, 0, len(seed.Products))
	for i, sp := range seed.Products {
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("product %d (%s): invalid price %q: %w", i, sp.Code, sp.Price, err)
		}
		products = append(products, Product{
			Code:         sp.Code,
			Description:  sp.Description,
			Price:        price,
			Unit:         sp.UOM,
			AvailableQty: sp.Qty,
		})
	}
	return New(products...)
}
