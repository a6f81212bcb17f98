package entitlement

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"humidorhub_backend/internal/model"
)

// A remaining-slots count at or below this reads as "near the limit".
const nearLimitThreshold = 10

// Service answers capability queries from a subscription record and performs
// the mutations that change usage state. It never queries inventory itself;
// callers pass the current item count in. Quota and limit answers are plain
// values, not errors.
type Service struct {
	store *Store
	log   zerolog.Logger
}

func NewService(store *Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "entitlement").Logger(),
	}
}

// Record loads the caller's subscription record. Degrades to the FREE default
// on backend trouble, see Store.Load.
func (s *Service) Record(ctx context.Context, userID uint) *model.SubscriptionRecord {
	return s.store.Load(ctx, userID)
}

func (s *Service) Limits(rec *model.SubscriptionRecord) TierLimits {
	return LimitsFor(Tier(rec.Tier))
}

func (s *Service) CanAddItem(rec *model.SubscriptionRecord, currentCount int) bool {
	limits := s.Limits(rec)
	if limits.MaxItems == Unlimited {
		return true
	}
	return currentCount < limits.MaxItems
}

// RemainingSlots returns how many items the user may still add, or nil when
// the tier has no cap. The result can be negative when a downgrade left the
// user over limit; callers treat that the same as at-limit.
func (s *Service) RemainingSlots(rec *model.SubscriptionRecord, currentCount int) *int {
	limits := s.Limits(rec)
	if limits.MaxItems == Unlimited {
		return nil
	}
	remaining := limits.MaxItems - currentCount
	return &remaining
}

func IsNearLimit(remaining *int) bool {
	return remaining != nil && *remaining <= nearLimitThreshold
}

func IsAtLimit(remaining *int) bool {
	return remaining != nil && *remaining <= 0
}

func (s *Service) CanImportCSV(rec *model.SubscriptionRecord) bool {
	return s.Limits(rec).CSVImportAllowed
}

func (s *Service) CanExportCSV(rec *model.SubscriptionRecord) bool {
	return s.Limits(rec).CSVExportAllowed
}

func (s *Service) CanUseAIFeature(rec *model.SubscriptionRecord) bool {
	return rec.AILookupsUsed < s.Limits(rec).AILookupsPerMonth
}

func (s *Service) HasFeature(rec *model.SubscriptionRecord, feature Feature) bool {
	return s.Limits(rec).Features[feature]
}

// RecordAIUsage bumps the monthly AI counter by one. The freshest record is
// re-read before incrementing so a retried call does not double count a write
// that already landed. Exact-once is not guaranteed: the increment is issued
// best-effort after the AI call has been dispatched, and a failed write means
// the lookup stays uncounted.
func (s *Service) RecordAIUsage(ctx context.Context, userID uint) (*model.SubscriptionRecord, error) {
	rec := s.store.Load(ctx, userID)
	used := rec.AILookupsUsed + 1

	if err := s.store.Save(ctx, userID, map[string]interface{}{
		"ai_lookups_used": used,
	}); err != nil {
		return nil, err
	}

	rec.AILookupsUsed = used
	return rec, nil
}

// ChangeTier records the outcome of an external billing event. Usage resets
// with the tier change; renewsOn is kept only on premium records. When the
// billing collaborator does not supply a renewal date, premium defaults to
// one month out.
func (s *Service) ChangeTier(ctx context.Context, userID uint, newTier Tier, renewsOn *time.Time) (*model.SubscriptionRecord, error) {
	// Make sure the row exists before merging into it.
	rec := s.store.Load(ctx, userID)

	fields := map[string]interface{}{
		"tier":            string(newTier),
		"status":          model.SubscriptionStatusActive,
		"ai_lookups_used": 0,
		"renews_on":       nil,
	}

	if newTier == TierPremium {
		if renewsOn == nil {
			t := time.Now().AddDate(0, 1, 0)
			renewsOn = &t
		}
		fields["renews_on"] = *renewsOn
	} else {
		renewsOn = nil
	}

	if err := s.store.Save(ctx, userID, fields); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", userID).Str("tier", string(newTier)).
		Msg("subscription tier changed")

	rec.Tier = string(newTier)
	rec.Status = model.SubscriptionStatusActive
	rec.AILookupsUsed = 0
	rec.RenewsOn = renewsOn
	return rec, nil
}
