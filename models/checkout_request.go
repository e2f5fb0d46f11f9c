package models

type CheckoutRequest struct {
	PlanId           string `json:"plan_id"`
	ExternalPriceRef string `json:"external_price_ref"`
	Hours            int    `json:"hours"`
	Kind             string `json:"kind"`
	CustomerEmail    string `json:"customer_email"`
	CustomerName     string `json:"customer_name"`
	UserId           string `json:"user_id"`
	DiscountCode     string `json:"discount_code,omitempty"`
	InstallmentPlan  int    `json:"installment_plan,omitempty"`
}
