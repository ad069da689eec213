package blend

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	gramsPerKilo = decimal.NewFromInt(1000)
	hundred      = decimal.NewFromInt(100)
)

// PriceTable maps an ingredient name to its price per kilogram. The fat
// price lives under FatPriceKey.
type PriceTable map[string]float64

// DefaultPrices returns the price table a fresh installation starts with.
func DefaultPrices() PriceTable {
	return PriceTable{FatPriceKey: 15.00}
}

// Price returns the per-kilogram price for name, or 0 when unknown.
func (p PriceTable) Price(name string) float64 {
	if p == nil {
		return 0
	}
	return p[name]
}

// Clone returns a copy of the table.
func (p PriceTable) Clone() PriceTable {
	out := make(PriceTable, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// leadingNumber matches the decimal number a price text starts with.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice reads a user-typed price. The first comma is accepted as
// decimal separator and only the leading number counts, so "18abc" is 18
// and "1.234,56" is 1.234. Text without a leading number is 0.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(leadingNumber.FindString(s), 64)
	if err != nil || !finite(v) {
		return 0
	}
	return v
}

// CostBreakdown is the cost and margin picture of one batch.
type CostBreakdown struct {
	Total     float64 `json:"total"`
	PerUnit   float64 `json:"perUnit"`
	FatCost   float64 `json:"fatCost"`
	MeatsCost float64 `json:"meatsCost"`
	Profit    float64 `json:"profit"`
	Margin    float64 `json:"margin"`
}

// ComputeCosts prices a calculation result. Weights are in grams and
// prices per kilogram. PerUnit is 0 when targetUnits is 0 and Margin is
// 0 when sellingPrice is 0.
func ComputeCosts(result CalculationResult, prices PriceTable, targetUnits int, sellingPrice float64) CostBreakdown {
	fatCost := kilos(result.Fat).Mul(amount(prices.Price(FatPriceKey)))

	meatsCost := decimal.Zero
	for _, m := range result.Meats {
		meatsCost = meatsCost.Add(kilos(m.Weight).Mul(amount(prices.Price(m.Name))))
	}

	total := fatCost.Add(meatsCost)
	perUnit := decimal.Zero
	if targetUnits != 0 {
		perUnit = total.Div(decimal.NewFromInt(int64(targetUnits)))
	}

	selling := amount(sellingPrice)
	profit := selling.Sub(perUnit)
	margin := decimal.Zero
	if !selling.IsZero() {
		margin = profit.Div(selling).Mul(hundred)
	}

	return CostBreakdown{
		Total:     total.InexactFloat64(),
		PerUnit:   perUnit.InexactFloat64(),
		FatCost:   fatCost.InexactFloat64(),
		MeatsCost: meatsCost.InexactFloat64(),
		Profit:    profit.InexactFloat64(),
		Margin:    margin.InexactFloat64(),
	}
}

func kilos(grams float64) decimal.Decimal {
	return amount(grams).Div(gramsPerKilo)
}

// amount converts f to a decimal, mapping NaN and infinities to zero.
func amount(f float64) decimal.Decimal {
	if !finite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
