package model

// Plan is a purchasable subscription tier.
type Plan string

const (
	PlanBasic   Plan = "basic"
	PlanPopular Plan = "popular"
	PlanPremium Plan = "premium"
)

// PlanDurationDays is the subscription credit granted per successful payment.
const PlanDurationDays = 30

// planPrices is the fixed tier price table (gateway currency, whole units).
var planPrices = map[Plan]int64{
	PlanBasic:   10,
	PlanPopular: 15,
	PlanPremium: 40,
}

// PriceOf resolves the charge amount for a plan. Unrecognized plans fall back
// to the basic price; the checkout surface treats any unknown tier as basic.
func PriceOf(p Plan) int64 {
	if price, ok := planPrices[p]; ok {
		return price
	}
	return planPrices[PlanBasic]
}

// KnownPlan reports whether p is one of the published tiers.
func KnownPlan(p Plan) bool {
	_, ok := planPrices[p]
	return ok
}
