// Package cost holds the cost formula: cost = regular price / multiplier,
// rounded to cents. It has no storage side effects.
package cost

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNoRegularPrice    = errors.New("No regular price set")
	ErrInvalidMultiplier = errors.New("Cost multiplier not set or invalid")
)

// Meta keys written on the catalog item by the bulk update. All of them get
// the same value.
const (
	MetaQuickBooksCost = "_qb_p_cost"
	MetaTrackingCost   = "_mwqbca_cost"
	MetaPurchaseCost   = "_purchase_cost"
	MetaCostOfGoods    = "_wc_cog_cost"
)

var MetaFields = []string{
	MetaQuickBooksCost,
	MetaTrackingCost,
	MetaPurchaseCost,
	MetaCostOfGoods,
}

// Payload keys of the product record pushed to the accounting service.
const (
	FieldPurchaseCost   = "PurchaseCost"
	FieldUnitPrice      = "UnitPrice"
	FieldQuickBooksCost = "qb_p_cost"
	FieldProductCost    = "_product_cost"
	FieldCostOfGoods    = "_wc_cog_cost"
)

type Result struct {
	RegularPrice float64
	Multiplier   float64
	Cost         float64
	Err          error
}

func (r Result) Valid() bool {
	return r.Err == nil
}

// ParsePrice parses a WooCommerce price string. Missing, non-numeric and
// non-positive prices are reported as ErrNoRegularPrice.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNoRegularPrice
	}
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, errors.Wrapf(ErrNoRegularPrice, "regular price %q is not a number", s)
	}
	if p <= 0 {
		return 0, errors.Wrapf(ErrNoRegularPrice, "regular price %q is not positive", s)
	}
	return p, nil
}

// Calculate computes round(regularPrice / multiplier, 2).
func Calculate(regularPrice string, multiplier float64) Result {
	r := Result{Multiplier: multiplier}

	price, err := ParsePrice(regularPrice)
	if err != nil {
		r.Err = err
		return r
	}
	r.RegularPrice = price

	if multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		r.Err = ErrInvalidMultiplier
		return r
	}

	r.Cost = Round(price / multiplier)
	return r
}

// Average returns the mean of the costs rounded to cents; ok is false for an
// empty slice.
func Average(costs []float64) (float64, bool) {
	if len(costs) == 0 {
		return 0, false
	}
	var total float64
	for _, c := range costs {
		total += c
	}
	return Round(total / float64(len(costs))), true
}

// Round rounds half away from zero to two decimals. The small epsilon keeps
// values such as 1.005 (stored as 1.00499...) on the expected side.
func Round(v float64) float64 {
	if v < 0 {
		return -Round(-v)
	}
	return math.Floor(v*100+0.5+1e-9) / 100
}

func Format(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
