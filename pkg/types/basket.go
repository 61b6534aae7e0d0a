package types

// ProductView is a catalog entry as the storefront renders it.
type ProductView struct {
	ProductCode string `json:"productCode"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Unit        string `json:"uom"`
	Qty         int    `json:"qty"`
}

// LineItemView is one basket row with its price rendered to two decimals.
type LineItemView struct {
	ProductCode string `json:"productCode"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Unit        string `json:"uom"`
	Qty         int    `json:"qty"`
	Subtotal    string `json:"subtotal"`
}

// BasketView is the full basket as returned by the basket endpoints.
type BasketView struct {
	Items     []LineItemView `json:"items"`
	Total     string         `json:"total"`
	LineCount int            `json:"line_count"`
	UnitCount int            `json:"unit_count"`
	IsEmpty   bool           `json:"is_empty"`
}

// BasketMutationView pairs a confirmation message with the resulting basket.
type BasketMutationView struct {
	Message string     `json:"message"`
	Basket  BasketView `json:"basket"`
}

// MessageView carries a bare confirmation message.
type MessageView struct {
	Message string `json:"message"`
}
