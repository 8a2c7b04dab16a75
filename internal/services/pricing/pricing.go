// Package pricing computes the discounted price, sales tax and total of a
// catalog item. All amounts are in minor currency units; percentages are
// whole numbers for discounts and may be fractional for tax.
package pricing

import (
	"fmt"
	"math"
)

// Quote is the full price breakdown of one catalog item.
type Quote struct {
	Price              int64
	DiscountPercent    int
	PriceAfterDiscount int64
	TaxPercent         float64
	TaxValue           int64
	Total              int64
}

func NewQuote(price int64, discountPercent int, salesTaxPercent float64) Quote {
	after := PriceAfterDiscount(price, discountPercent)
	taxPercent := TaxPercent(salesTaxPercent)
	tax := taxOn(after, taxPercent)

	return Quote{
		Price:              price,
		DiscountPercent:    ClampPercent(discountPercent),
		PriceAfterDiscount: after,
		TaxPercent:         taxPercent,
		TaxValue:           tax,
		Total:              after + tax,
	}
}

// ClampPercent bounds a discount to [0, 100].
func ClampPercent(p int) int {
	return min(max(p, 0), 100)
}

// PriceAfterDiscount returns price - price*discount/100, rounded half away
// from zero to the minor unit.
func PriceAfterDiscount(price int64, discountPercent int) int64 {
	d := int64(ClampPercent(discountPercent))

	return roundDiv(price*(100-d), 100)
}

// TaxPercent returns the effective sales tax; negative settings mean none.
func TaxPercent(salesTaxPercent float64) float64 {
	if salesTaxPercent < 0 || math.IsNaN(salesTaxPercent) {
		return 0
	}

	return salesTaxPercent
}

func TaxValue(price int64, discountPercent int, salesTaxPercent float64) int64 {
	return taxOn(PriceAfterDiscount(price, discountPercent), TaxPercent(salesTaxPercent))
}

func TotalPrice(price int64, discountPercent int, salesTaxPercent float64) int64 {
	return NewQuote(price, discountPercent, salesTaxPercent).Total
}

// FormatMinor renders minor units as a decimal string with two fraction
// digits, e.g. 9000 -> "90.00".
func FormatMinor(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func taxOn(amount int64, percent float64) int64 {
	return int64(math.Round(float64(amount) * percent / 100))
}

func roundDiv(a, b int64) int64 {
	if a < 0 {
		return -((-a + b/2) / b)
	}

	return (a + b/2) / b
}
