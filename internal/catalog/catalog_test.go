package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
)

func TestDefaultCatalogMatchesStorefront(t *testing.T) {
	c := Default()
	all := c.All()
	require.Len(t, all, 6)

	codes := make([]string, 0, len(all))
	for _, p := range all {
		codes = append(codes, p.Code)
	}
	assert.Equal(t, []string{"P001", "P002", "P003", "P004", "P005", "P006"}, codes)

	first := all[0]
	assert.Equal(t, "Fresh Apples", first.Description)
	assert.True(t, first.Price.Equal(decimal.RequireFromString("5.99")))
	assert.Equal(t, "kg", first.Unit)
	assert.Equal(t, 10, first.AvailableQty)

	assert.Equal(t, "unit", all[2].Unit)
	assert.Equal(t, "liter", all[3].Unit)
}

func TestFindByCode(t *testing.T) {
	c := Default()

	p, err := c.FindByCode("P002")
	require.NoError(t, err)
	assert.Equal(t, "Organic Bananas", p.Description)

	_, err = c.FindByCode("P999")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, "NOT_FOUND: product P999 not found", err.Error())

	_, err = c.FindByCode("p001")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "lookups are exact")
}

func TestAllReturnsCopy(t *testing.T) {
	c := Default()
	all := c.All()
	all[0].Description = "mutated"

	p, err := c.FindByCode("P001")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Apples", p.Description)
}

func TestNewRejectsInvalidProducts(t *testing.T) {
	price := decimal.RequireFromString("1.00")
	tests := []struct {
		name     string
		products []Product
	}{
		{name: "bad code", products: []Product{{Code: "001", Description: "x", Price: price, Unit: "kg"}}},
		{name: "overflowing code", products: []Product{{Code: "P99999999999999999999", Description: "x", Price: price, Unit: "kg"}}},
		{name: "negative price", products: []Product{{Code: "P001", Description: "x", Price: decimal.RequireFromString("-1"), Unit: "kg"}}},
		{name: "negative stock", products: []Product{{Code: "P001", Description: "x", Price: price, Unit: "kg", AvailableQty: -1}}},
		{name: "missing unit", products: []Product{{Code: "P001", Description: "x", Price: price}}},
		{name: "duplicate", products: []Product{
			{Code: "P001", Description: "x", Price: price, Unit: "kg"},
			{Code: "P001", Description: "y", Price: price, Unit: "kg"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.products...)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestNumericSuffix(t *testing.T) {
	assert.Equal(t, 5, NumericSuffix("P005"))
	assert.Equal(t, 120, NumericSuffix("SKU120"))
	assert.Equal(t, 0, NumericSuffix("P"))
	assert.Equal(t, 0, NumericSuffix(""))
}

func TestSuffixModHandlesLongDigitRuns(t *testing.T) {
	assert.Equal(t, 5, SuffixMod("P005", 7))
	assert.Equal(t, 120%7, SuffixMod("SKU120", 7))
	assert.Equal(t, 0, SuffixMod("P", 7))
	// 10^20 - 1 == 1 (mod 7)
	assert.Equal(t, 1, SuffixMod("P99999999999999999999", 7))
}

func TestValidCode(t *testing.T) {
	for _, code := range []string{"P001", "SKU120", "p9"} {
		assert.True(t, ValidCode(code), code)
	}
	for _, code := range []string{"", "P", "001", "P-001", "P001a", "P99999999999999999999"} {
		assert.False(t, ValidCode(code), code)
	}
}

func TestLoadFileParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := `products:
  - code: X010
    description: Sea Salt
    price: 0.99
    uom: lb
    qty: 4
  - code: X011
    description: Olive Oil
    price: "7.50"
    uom: bottle
    qty: 2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())

	salt, err := c.FindByCode("X010")
	require.NoError(t, err)
	assert.Equal(t, "0.99", salt.Price.StringFixed(2))
	assert.Equal(t, "lb", salt.Unit)

	oil, err := c.FindByCode("X011")
	require.NoError(t, err)
	assert.Equal(t, "7.50", oil.Price.StringFixed(2))
}

func TestLoadFileEmptyPathUsesDefault(t *testing.T) {
	c, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, 6, c.Len())
}

func TestParseRejectsBadPrice(t *testing.T) {
	_, err := Parse([]byte("products:\n  - code: P001\n    description: x\n    price: cheap\n    uom: kg\n"))
	require.Error(t, err)
}
