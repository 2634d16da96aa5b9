package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierLimits(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		maxDays int
	}{
		{"monthly", TierMonthly, 30},
		{"quarter", TierQuarter, 90},
		{"annual", TierAnnual, 365},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := TierLimits(tt.tier)
			assert.Equal(t, tt.maxDays, limits.MaxDays)
			assert.NotEmpty(t, limits.DisplayName)
		})
	}
}

func TestTierLimits_UnknownTierFailsSafe(t *testing.T) {
	limits := TierLimits(Tier("platinum"))
	assert.Equal(t, 30, limits.MaxDays)
}

func TestTierFromPlanType(t *testing.T) {
	tests := []struct {
		planType string
		want     Tier
	}{
		{"monthly", TierMonthly},
		{"3months", TierQuarter},
		{"3month", TierQuarter},
		{"yearly", TierAnnual},
		{"annual", TierAnnual},
		{"1year", TierAnnual},
		{"", TierMonthly},
		{"lifetime", TierMonthly},
	}

	for _, tt := range tests {
		t.Run(tt.planType, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFromPlanType(tt.planType))
		})
	}
}
