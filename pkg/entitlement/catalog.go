package entitlement

type Tier string
type Feature string

const (
	TierFree    Tier = "FREE"
	TierPremium Tier = "PREMIUM"
)

// Unlimited marks a count limit with no cap.
const Unlimited = -1

const (
	AdvancedAnalytics Feature = "advanced_analytics"
	EnvironmentAlerts Feature = "environment_alerts"
	CSVImport         Feature = "csv_import"
)

type TierLimits struct {
	MaxItems          int
	CSVImportAllowed  bool
	CSVExportAllowed  bool
	AILookupsPerMonth int
	Features          map[Feature]bool
}

var tierLimits = map[Tier]TierLimits{
	TierFree: {
		MaxItems:          50,
		CSVImportAllowed:  false,
		CSVExportAllowed:  true,
		AILookupsPerMonth: 5,
		Features:          map[Feature]bool{},
	},
	TierPremium: {
		MaxItems:          Unlimited,
		CSVImportAllowed:  true,
		CSVExportAllowed:  true,
		AILookupsPerMonth: 100,
		Features: map[Feature]bool{
			AdvancedAnalytics: true,
			EnvironmentAlerts: true,
			CSVImport:         true,
		},
	},
}

// LimitsFor returns the limits for a tier. Unrecognized tier values fall back
// to the FREE limits: never grant premium entitlements on corrupt input.
func LimitsFor(tier Tier) TierLimits {
	if limits, ok := tierLimits[tier]; ok {
		return limits
	}
	return tierLimits[TierFree]
}

// ParseTier maps a stored tier string onto a known tier, defaulting to FREE.
func ParseTier(s string) Tier {
	if Tier(s) == TierPremium {
		return TierPremium
	}
	return TierFree
}
