package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitsForKnownTiers(t *testing.T) {
	free := LimitsFor(TierFree)
	assert.Equal(t, 50, free.MaxItems)
	assert.False(t, free.CSVImportAllowed)
	assert.True(t, free.CSVExportAllowed)
	assert.Equal(t, 5, free.AILookupsPerMonth)

	premium := LimitsFor(TierPremium)
	assert.Equal(t, Unlimited, premium.MaxItems)
	assert.True(t, premium.CSVImportAllowed)
	assert.True(t, premium.CSVExportAllowed)
	assert.True(t, premium.Features[AdvancedAnalytics])
}

func TestPremiumQuotasAtLeastFree(t *testing.T) {
	free := LimitsFor(TierFree)
	premium := LimitsFor(TierPremium)

	assert.GreaterOrEqual(t, premium.AILookupsPerMonth, free.AILookupsPerMonth)
	assert.True(t, premium.MaxItems == Unlimited)
	for f, allowed := range free.Features {
		if allowed {
			assert.True(t, premium.Features[f], "premium missing free feature %s", f)
		}
	}
}

func TestLimitsForUnknownTierFallsBackToFree(t *testing.T) {
	// Schema drift or corrupt data must never grant premium entitlements.
	limits := LimitsFor(Tier("PLATINUM"))
	assert.Equal(t, LimitsFor(TierFree), limits)
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, TierPremium, ParseTier("PREMIUM"))
	assert.Equal(t, TierFree, ParseTier("FREE"))
	assert.Equal(t, TierFree, ParseTier(""))
	assert.Equal(t, TierFree, ParseTier("premium"))
}
