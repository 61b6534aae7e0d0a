package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/basket-engine/internal/catalog"
)

const (
	keyModulus  = 7
	triggerKey  = 5
	unitLenRule = 2
)

var (
	discount = decimal.RequireFromString("0.20")
	cents    = decimal.NewFromInt(100)
	modulus  = decimal.NewFromInt(keyModulus)
)

// subUnits maps a two-letter unit to the smaller unit a line item is sold in
// once the adjustment fires. Unlisted units keep their label.
var subUnits = map[string]string{
	"kg": "g",
	"lb": "oz",
	"kl": "l",
	"km": "m",
	"dl": "cl",
	"cl": "ml",
}

// Engine derives the price and unit a new line item is snapshotted with.
type Engine struct{}

// NewEngine returns the storefront pricing rule.
func NewEngine() Engine {
	return Engine{}
}

// AdjustmentKey is (numeric code suffix + floor(price*100)) mod 7. Both terms
// are reduced before summing so neither can overflow.
func (Engine) AdjustmentKey(p catalog.Product) int {
	hundredths := p.Price.Mul(cents).Floor().Mod(modulus).IntPart()
	return (catalog.SuffixMod(p.Code, keyModulus) + int(hundredths)) % keyModulus
}

// Fires reports whether the adjustment applies to p.
func (e Engine) Fires(p catalog.Product) bool {
	return e.AdjustmentKey(p) == triggerKey && len(p.Unit) == unitLenRule
}

// EffectivePriceAndUnit returns the product's base values unless the
// adjustment fires, in which case the unit drops to its sub-unit and the
// price is reduced by 0.20, never below zero.
func (e Engine) EffectivePriceAndUnit(p catalog.Product) (decimal.Decimal, string) {
	if !e.Fires(p) {
		return p.Price, p.Unit
	}
	unit := p.Unit
	if sub, ok := subUnits[unit]; ok {
		unit = sub
	}
	price := p.Price.Sub(discount)
	if price.IsNegative() {
		price = decimal.Zero
	}
	return price, unit
}
