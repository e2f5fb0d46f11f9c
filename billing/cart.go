package billing

import (
	"math"
	"rotahub/models"
	"strings"
)

// Config carries the pricing parameters for the variable-hour plan.
// It is passed explicitly so every function stays free of hidden state.
type Config struct {
	HourRate     float64
	MinimumHours int
}

type CartItem struct {
	PlanId string  `json:"plan_id"`
	Kind   string  `json:"kind"`
	Hours  int     `json:"hours"`
	Amount float64 `json:"amount"`
}

type DiscountResult struct {
	Discount float64 `json:"discount"`
	Note     string  `json:"note,omitempty"`
}

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Note     string  `json:"note,omitempty"`
}

const (
	// scholarship code, collapses the subtotal to zero
	scholarshipCode = "NP12345"
	// demo code, collapses the pre-tax total to one cent
	pennyCode = "MENTO12345"
)

// CreateCartItem prices a catalog plan into a cart line. Unknown plan ids
// return nil. Block plans keep their catalog hours and price regardless of
// any override; the a la carte plan takes the override, floored at the
// configured minimum.
func CreateCartItem(catalog *Catalog, conf Config, planId string, hoursOverride *int) *CartItem {
	plan := catalog.PlanByID(planId)
	if plan == nil {
		return nil
	}
	if plan.Kind == models.PlanKindALaCarte {
		hours := conf.MinimumHours
		if hoursOverride != nil && *hoursOverride > hours {
			hours = *hoursOverride
		}
		return &CartItem{
			PlanId: plan.PlanId,
			Kind:   plan.Kind,
			Hours:  hours,
			Amount: conf.HourRate * float64(hours),
		}
	}
	return &CartItem{
		PlanId: plan.PlanId,
		Kind:   plan.Kind,
		Hours:  plan.Hours,
		Amount: plan.DisplayPrice,
	}
}

// ComputeTotals prices the cart: discount is applied before tax.
func ComputeTotals(cart []CartItem, taxRate float64, discountCode string) Totals {
	var subtotal float64
	for _, item := range cart {
		subtotal += item.Amount
	}
	result := applyDiscount(subtotal, discountCode)
	discounted := math.Max(subtotal-result.Discount, 0)
	tax := discounted * taxRate
	return Totals{
		Subtotal: subtotal,
		Discount: result.Discount,
		Tax:      tax,
		Total:    discounted + tax,
		Note:     result.Note,
	}
}

type discountRule struct {
	amount func(subtotal float64) float64
	note   string
}

// Exactly two codes are honored; extending this to a dynamic table is a
// design change, not a bug fix.
var discountRules = map[string]discountRule{
	scholarshipCode: {
		amount: func(subtotal float64) float64 { return subtotal },
		note:   "Scholarship code applied, your order is covered in full",
	},
	pennyCode: {
		amount: func(subtotal float64) float64 { return subtotal - 0.01 },
		note:   "Test checkout code applied, total reduced to one cent",
	},
}

// applyDiscount resolves a discount code against the subtotal. An empty
// code yields no discount and no note; an unknown code yields no discount
// but carries a note so the caller can tell "no code" from "bad code".
func applyDiscount(subtotal float64, code string) DiscountResult {
	if code == "" {
		return DiscountResult{}
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return DiscountResult{}
	}
	rule, ok := discountRules[normalized]
	if !ok {
		return DiscountResult{Note: "Discount code not recognized"}
	}
	discount := math.Min(math.Max(rule.amount(subtotal), 0), subtotal)
	return DiscountResult{Discount: discount, Note: rule.note}
}

// InstallmentAmount is the display-only per-installment figure. No cent
// reconciliation happens here; the payment gateway is authoritative for
// the amounts actually charged. A count below one is treated as a single
// payment.
func InstallmentAmount(total float64, installments int) float64 {
	if installments < 1 {
		return total
	}
	return total / float64(installments)
}
