package billing

import (
	"math"
	"rotahub/models"
)

type HourCreditSummary struct {
	TotalRemaining float64 `json:"total_remaining"`
	TotalAllocated float64 `json:"total_allocated"`
}

type BillingKpis struct {
	HoursInBank    float64 `json:"hours_in_bank"`
	HoursUsed      float64 `json:"hours_used"`
	HoursRemaining float64 `json:"hours_remaining"`
}

// DeriveHourCredits normalizes a raw balance snapshot. A missing remaining
// value counts as zero; a missing allocation is assumed equal to the
// remaining balance, so absent allocation data never produces a false
// "hours used" signal. Both results are clamped to zero.
func DeriveHourCredits(raw *models.HourBalance) HourCreditSummary {
	var remaining, allocated float64
	if raw != nil && raw.TotalRemaining != nil {
		remaining = *raw.TotalRemaining
	}
	if raw != nil && raw.TotalAllocated != nil {
		allocated = *raw.TotalAllocated
	} else {
		allocated = remaining
	}
	return HourCreditSummary{
		TotalRemaining: math.Max(remaining, 0),
		TotalAllocated: math.Max(allocated, 0),
	}
}

// DeriveKpis computes the dashboard figures from a credit summary.
// HoursRemaining subtracts the used hours from the banked balance, which
// is not the same value as TotalRemaining whenever hours have been used;
// this matches the billing rule in production and must not be "fixed"
// without a confirmed rule change.
func DeriveKpis(credits HourCreditSummary) BillingKpis {
	hoursInBank := credits.TotalRemaining
	hoursUsed := math.Max(credits.TotalAllocated-credits.TotalRemaining, 0)
	return BillingKpis{
		HoursInBank:    hoursInBank,
		HoursUsed:      hoursUsed,
		HoursRemaining: math.Max(hoursInBank-hoursUsed, 0),
	}
}
