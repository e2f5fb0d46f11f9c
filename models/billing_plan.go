package models

const (
	PlanKindBlock    = "block"
	PlanKindALaCarte = "a_la_carte"
)

type BillingPlan struct {
	PlanId           string  `json:"plan_id" bson:"plan_id"`
	Kind             string  `json:"kind" bson:"kind"`
	Title            string  `json:"title" bson:"title"`
	Description      string  `json:"description" bson:"description"`
	Hours            int     `json:"hours" bson:"hours"`
	DisplayPrice     float64 `json:"display_price" bson:"display_price"`
	ExternalPriceRef string  `json:"external_price_ref" bson:"external_price_ref"`
	IsActive         bool    `json:"is_active" bson:"is_active"`
}

func (p *BillingPlan) DataType() string {
	return "billing_plan"
}
