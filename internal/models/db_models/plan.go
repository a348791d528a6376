package db_models

// Plan is a subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

var planRank = map[Plan]int{
	PlanFree:    0,
	PlanPro:     1,
	PlanPremium: 2,
}

var planLimits = map[Plan]int{
	PlanFree:    2,
	PlanPro:     150,
	PlanPremium: 200,
}

// ParsePlan returns the plan for s and whether it is a known tier.
func ParsePlan(s string) (Plan, bool) {
	p := Plan(s)
	_, ok := planRank[p]
	return p, ok
}

func (p Plan) Valid() bool {
	_, ok := planRank[p]
	return ok
}

// Rank orders tiers free < pro < premium. Unknown plans rank as free.
func (p Plan) Rank() int {
	return planRank[p]
}

// GenerationsLimit is the monthly quota of the tier; unknown plans get the free quota.
func (p Plan) GenerationsLimit() int {
	if limit, ok := planLimits[p]; ok {
		return limit
	}
	return planLimits[PlanFree]
}

// Paid reports whether the tier is sold through the billing provider.
func (p Plan) Paid() bool {
	return p == PlanPro || p == PlanPremium
}
