package catalog

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
)

var codePattern = regexp.MustCompile(`^[A-Za-z]+([0-9]+)$`)

// Product is an immutable catalog entry. Price and Unit are the listed base values.
type Product struct {
	Code         string          `json:"productCode"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"uom"`
	AvailableQty int             `json:"qty"`
}

// NumericSuffix returns the digit run of a product code as an integer ("P005" -> 5).
// Codes without a digit suffix, or whose suffix does not fit an int, yield 0.
func NumericSuffix(code string) int {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// SuffixMod returns the numeric suffix of code modulo m. It works digit by
// digit so suffixes longer than an int are still exact.
func SuffixMod(code string, m int) int {
	match := codePattern.FindStringSubmatch(code)
	if match == nil || m <= 0 {
		return 0
	}
	r := 0
	for _, d := range match[1] {
		r = (r*10 + int(d-'0')) % m
	}
	return r
}

// ValidCode reports whether code is a letter prefix followed by a digit run
// that fits an int.
func ValidCode(code string) bool {
	m := codePattern.FindStringSubmatch(code)
	if m == nil {
		return false
	}
	_, err := strconv.Atoi(m[1])
	return err == nil
}

func (p Product) validate() error {
	if !ValidCode(p.Code) {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product code %q must be a letter prefix followed by an int-sized digit run", p.Code))
	}
	if p.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s requires a description", p.Code))
	}
	if p.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s has a negative price", p.Code))
	}
	if p.Unit == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s requires a unit of measure", p.Code))
	}
	if p.AvailableQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s has negative stock", p.Code))
	}
	return nil
}
