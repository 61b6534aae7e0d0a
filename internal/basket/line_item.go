package basket

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// LineItem is one product in the basket. Description, Price and Unit are
// captured when the product is first added and never re-derived.
type LineItem struct {
	ProductCode string          `json:"productCode"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"uom"`
	Qty         int             `json:"qty"`
}

// Subtotal is Price * Qty.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Qty)))
}

// encodeItems renders the JSON array stored in a persisted slot.
func encodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// decodeItems parses a persisted slot. Blank payloads decode to an empty basket.
func decodeItems(raw []byte) ([]LineItem, error) {
	if len(raw) == 0 {
		return []LineItem{}, nil
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode basket: %w", err)
	}
	if items == nil {
		items = []LineItem{}
	}
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ProductCode == "" {
			return nil, fmt.Errorf("decode basket: line item without product code")
		}
		if item.Qty < 1 {
			return nil, fmt.Errorf("decode basket: %s has quantity %d", item.ProductCode, item.Qty)
		}
		if _, dup := seen[item.ProductCode]; dup {
			return nil, fmt.Errorf("decode basket: duplicate line item %s", item.ProductCode)
		}
		seen[item.ProductCode] = struct{}{}
	}
	return items, nil
}
