package billing

import "rotahub/models"

// Catalog is a read-only list of purchasable plans. Lookup by a stale or
// unknown id returns nil; callers decide whether that is user-visible.
type Catalog struct {
	plans []models.BillingPlan
}

func NewCatalog(plans []models.BillingPlan) *Catalog {
	if len(plans) == 0 {
		plans = DefaultPlans()
	}
	return &Catalog{plans: plans}
}

func (c *Catalog) Plans() []models.BillingPlan {
	return c.plans
}

func (c *Catalog) PlanByID(id string) *models.BillingPlan {
	for i := range c.plans {
		if c.plans[i].PlanId == id {
			return &c.plans[i]
		}
	}
	return nil
}

// DefaultPlans is the built-in catalog, used when the database holds no
// plan documents yet
func DefaultPlans() []models.BillingPlan {
	return []models.BillingPlan{
		{
			PlanId:           "block-60",
			Kind:             models.PlanKindBlock,
			Title:            "60 Hour Block",
			Description:      "60 clinical hours at a fixed bundle price",
			Hours:            60,
			DisplayPrice:     495,
			ExternalPriceRef: "price_block_60",
			IsActive:         true,
		},
		{
			PlanId:           "block-120",
			Kind:             models.PlanKindBlock,
			Title:            "120 Hour Block",
			Description:      "120 clinical hours at a fixed bundle price",
			Hours:            120,
			DisplayPrice:     795,
			ExternalPriceRef: "price_block_120",
			IsActive:         true,
		},
		{
			PlanId:           "block-180",
			Kind:             models.PlanKindBlock,
			Title:            "180 Hour Block",
			Description:      "180 clinical hours at a fixed bundle price",
			Hours:            180,
			DisplayPrice:     1195,
			ExternalPriceRef: "price_block_180",
			IsActive:         true,
		},
		{
			PlanId:           "a-la-carte",
			Kind:             models.PlanKindALaCarte,
			Title:            "A La Carte Hours",
			Description:      "Per-hour purchase with a minimum hour floor",
			Hours:            30,
			DisplayPrice:     300,
			ExternalPriceRef: "price_a_la_carte",
			IsActive:         true,
		},
	}
}
