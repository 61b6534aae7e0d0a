package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/basket-engine/internal/catalog"
)

func product(code, price, unit string) catalog.Product {
	return catalog.Product{Code: code, Description: code, Price: decimal.RequireFromString(price), Unit: unit}
}

func TestAdjustmentKeyForDefaultCatalog(t *testing.T) {
	engine := NewEngine()
	want := map[string]int{
		"P001": 5,
		"P002": 1,
		"P003": 6,
		"P004": 6,
		"P005": 3,
		"P006": 1,
	}
	for _, p := range catalog.Default().All() {
		if got := engine.AdjustmentKey(p); got != want[p.Code] {
			t.Fatalf("%s: expected key %d, got %d", p.Code, want[p.Code], got)
		}
	}
}

func TestAdjustmentKeyForLongCodeSuffix(t *testing.T) {
	engine := NewEngine()
	// (10^20 - 1) + 100 == 1 + 2 (mod 7)
	p := product("P99999999999999999999", "1.00", "kg")
	if got := engine.AdjustmentKey(p); got != 3 {
		t.Fatalf("expected key 3, got %d", got)
	}
}

func TestEffectivePriceAndUnit(t *testing.T) {
	engine := NewEngine()
	tests := []struct {
		name      string
		product   catalog.Product
		wantPrice string
		wantUnit  string
	}{
		// (1 + 599) % 7 == 5
		{name: "fires on kg", product: product("P001", "5.99", "kg"), wantPrice: "5.79", wantUnit: "g"},
		// (5 + 649) % 7 == 3
		{name: "key 3 passes through", product: product("P005", "6.49", "kg"), wantPrice: "6.49", wantUnit: "kg"},
		// (3 + 199) % 7 == 6
		{name: "long unit passes through", product: product("P003", "1.99", "unit"), wantPrice: "1.99", wantUnit: "unit"},
		// (1 + 599) % 7 == 5 but unit length is 4
		{name: "key 5 with long unit", product: product("P001", "5.99", "each"), wantPrice: "5.99", wantUnit: "each"},
		// (1 + 4) % 7 == 5
		{name: "clamps at zero", product: product("P001", "0.04", "lb"), wantPrice: "0", wantUnit: "oz"},
		// (2 + 3) % 7 == 5
		{name: "unlisted two letter unit keeps label", product: product("P002", "0.03", "pk"), wantPrice: "0", wantUnit: "pk"},
		// (0 + 502) % 7 == 5
		{name: "unlisted unit still discounted", product: product("Q000", "5.02", "bx"), wantPrice: "4.82", wantUnit: "bx"},
		// (10 + 100) % 7 == 5
		{name: "decilitre to centilitre", product: product("X010", "1.00", "dl"), wantPrice: "0.8", wantUnit: "cl"},
		// floor(5.999 * 100) == 599
		{name: "floors fractional cents", product: product("P001", "5.999", "kg"), wantPrice: "5.799", wantUnit: "g"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, unit := engine.EffectivePriceAndUnit(tt.product)
			if !price.Equal(decimal.RequireFromString(tt.wantPrice)) {
				t.Fatalf("expected price %s, got %s", tt.wantPrice, price)
			}
			if unit != tt.wantUnit {
				t.Fatalf("expected unit %q, got %q", tt.wantUnit, unit)
			}
		})
	}
}

func TestEffectivePriceNeverNegative(t *testing.T) {
	engine := NewEngine()
	for n := 0; n < 100; n++ {
		p := catalog.Product{Code: "P001", Description: "x", Price: decimal.New(int64(n), -2), Unit: "kg"}
		price, _ := engine.EffectivePriceAndUnit(p)
		if price.IsNegative() {
			t.Fatalf("price %s produced negative effective price %s", p.Price, price)
		}
	}
}

func TestSubUnitTable(t *testing.T) {
	want := map[string]string{"kg": "g", "lb": "oz", "kl": "l", "km": "m", "dl": "cl", "cl": "ml"}
	if len(subUnits) != len(want) {
		t.Fatalf("expected %d sub-units, got %d", len(want), len(subUnits))
	}
	for unit, sub := range want {
		if subUnits[unit] != sub {
			t.Fatalf("expected %s -> %s, got %q", unit, sub, subUnits[unit])
		}
	}
}
