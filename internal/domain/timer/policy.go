package timer

// Tier identifies a subscription tier that bounds the maximum commitment
// duration a user may request.
type Tier string

const (
	TierMonthly Tier = "1month"
	TierQuarter Tier = "3month"
	TierAnnual  Tier = "1year"
)

func (t Tier) String() string {
	return string(t)
}

// PolicyLimits is the commitment allowance for a subscription tier.
type PolicyLimits struct {
	MaxDays     int
	DisplayName string
}

var tierLimits = map[Tier]PolicyLimits{
	TierMonthly: {MaxDays: 30, DisplayName: "Monthly"},
	TierQuarter: {MaxDays: 90, DisplayName: "3-Month"},
	TierAnnual:  {MaxDays: 365, DisplayName: "Annual"},
}

// TierLimits returns the commitment limits for a tier. Unknown tiers map to
// the most restrictive known tier, never to an unlimited allowance.
func TierLimits(tier Tier) PolicyLimits {
	if limits, ok := tierLimits[tier]; ok {
		return limits
	}
	return tierLimits[TierMonthly]
}

// TierFromPlanType maps a billing plan type to the tier bounding commitment
// durations. Unknown plan types map to the most restrictive tier.
func TierFromPlanType(planType string) Tier {
	switch planType {
	case "monthly":
		return TierMonthly
	case "3months", "3month":
		return TierQuarter
	case "yearly", "annual", "1year":
		return TierAnnual
	default:
		return TierMonthly
	}
}
