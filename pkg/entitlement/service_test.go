package entitlement

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humidorhub_backend/internal/model"
)

func newTestService(backend Backend) *Service {
	return NewService(NewStore(backend, zerolog.Nop()), zerolog.Nop())
}

func freeRecord() *model.SubscriptionRecord {
	return &model.SubscriptionRecord{
		UserID: 1,
		Tier:   string(TierFree),
		Status: model.SubscriptionStatusActive,
	}
}

func premiumRecord() *model.SubscriptionRecord {
	return &model.SubscriptionRecord{
		UserID: 1,
		Tier:   string(TierPremium),
		Status: model.SubscriptionStatusActive,
	}
}

func TestCanAddItem(t *testing.T) {
	svc := newTestService(newMemoryBackend())

	tests := []struct {
		name  string
		rec   *model.SubscriptionRecord
		count int
		want  bool
	}{
		{"free under limit", freeRecord(), 0, true},
		{"free one below limit", freeRecord(), 49, true},
		{"free at limit", freeRecord(), 50, false},
		{"free over limit", freeRecord(), 60, false},
		{"premium always", premiumRecord(), 0, true},
		{"premium huge count", premiumRecord(), 100000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.CanAddItem(tt.rec, tt.count))
		})
	}
}

func TestRemainingSlots(t *testing.T) {
	svc := newTestService(newMemoryBackend())

	assert.Nil(t, svc.RemainingSlots(premiumRecord(), 5000))

	remaining := svc.RemainingSlots(freeRecord(), 45)
	require.NotNil(t, remaining)
	assert.Equal(t, 5, *remaining)
	assert.True(t, IsNearLimit(remaining))
	assert.False(t, IsAtLimit(remaining))

	// Over limit after a downgrade: negative remaining reads as at-limit.
	over := svc.RemainingSlots(freeRecord(), 60)
	require.NotNil(t, over)
	assert.Equal(t, -10, *over)
	assert.True(t, IsAtLimit(over))
	assert.True(t, IsNearLimit(over))

	assert.False(t, IsNearLimit(nil))
	assert.False(t, IsAtLimit(nil))
}

func TestCSVEntitlements(t *testing.T) {
	svc := newTestService(newMemoryBackend())

	assert.False(t, svc.CanImportCSV(freeRecord()))
	assert.True(t, svc.CanImportCSV(premiumRecord()))
	assert.True(t, svc.CanExportCSV(freeRecord()))
	assert.True(t, svc.CanExportCSV(premiumRecord()))
}

func TestCanUseAIFeature(t *testing.T) {
	svc := newTestService(newMemoryBackend())

	rec := freeRecord() // free quota is 5/month
	rec.AILookupsUsed = 4
	assert.True(t, svc.CanUseAIFeature(rec))

	rec.AILookupsUsed = 5
	assert.False(t, svc.CanUseAIFeature(rec))
}

func TestHasFeature(t *testing.T) {
	svc := newTestService(newMemoryBackend())

	assert.False(t, svc.HasFeature(freeRecord(), AdvancedAnalytics))
	assert.True(t, svc.HasFeature(premiumRecord(), AdvancedAnalytics))
	assert.True(t, svc.HasFeature(premiumRecord(), EnvironmentAlerts))
}

func TestRecordAIUsageIncrementsAndPersists(t *testing.T) {
	backend := newMemoryBackend()
	svc := newTestService(backend)
	ctx := context.Background()

	rec, err := svc.RecordAIUsage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.AILookupsUsed)

	rec, err = svc.RecordAIUsage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.AILookupsUsed)

	assert.Equal(t, 2, svc.Record(ctx, 1).AILookupsUsed)
}

func TestRecordAIUsageReadsFreshestRecord(t *testing.T) {
	// A concurrent writer bumped the counter between our calls; the
	// read-modify-write must build on the stored value, not a stale copy.
	backend := newMemoryBackend()
	svc := newTestService(backend)
	ctx := context.Background()

	_, err := svc.RecordAIUsage(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, backend.Merge(ctx, 1, map[string]interface{}{"ai_lookups_used": 4}))

	rec, err := svc.RecordAIUsage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, rec.AILookupsUsed)
}

func TestRecordAIUsageSurfacesWriteFailure(t *testing.T) {
	backend := newMemoryBackend()
	svc := newTestService(backend)
	ctx := context.Background()

	svc.Record(ctx, 1)
	backend.mergeErr = errBackendDown

	_, err := svc.RecordAIUsage(ctx, 1)
	assert.ErrorIs(t, err, errBackendDown)

	backend.mergeErr = nil
	assert.Equal(t, 0, svc.Record(ctx, 1).AILookupsUsed)
}

func TestChangeTierToPremium(t *testing.T) {
	backend := newMemoryBackend()
	svc := newTestService(backend)
	ctx := context.Background()

	// Existing usage resets with the tier change.
	_, err := svc.RecordAIUsage(ctx, 1)
	require.NoError(t, err)

	rec, err := svc.ChangeTier(ctx, 1, TierPremium, nil)
	require.NoError(t, err)
	assert.Equal(t, string(TierPremium), rec.Tier)
	assert.Equal(t, 0, rec.AILookupsUsed)
	require.NotNil(t, rec.RenewsOn)
	assert.True(t, rec.RenewsOn.After(time.Now()))

	loaded := svc.Record(ctx, 1)
	assert.Equal(t, string(TierPremium), loaded.Tier)
	assert.Equal(t, 0, loaded.AILookupsUsed)
	require.NotNil(t, loaded.RenewsOn)
}

func TestChangeTierToFreeClearsRenewal(t *testing.T) {
	backend := newMemoryBackend()
	svc := newTestService(backend)
	ctx := context.Background()

	_, err := svc.ChangeTier(ctx, 1, TierPremium, nil)
	require.NoError(t, err)
	_, err = svc.RecordAIUsage(ctx, 1)
	require.NoError(t, err)

	rec, err := svc.ChangeTier(ctx, 1, TierFree, nil)
	require.NoError(t, err)
	assert.Equal(t, string(TierFree), rec.Tier)
	assert.Equal(t, 0, rec.AILookupsUsed)
	assert.Nil(t, rec.RenewsOn)

	loaded := svc.Record(ctx, 1)
	assert.Equal(t, string(TierFree), loaded.Tier)
	assert.Nil(t, loaded.RenewsOn)
}

func TestChangeTierHonorsBillingPeriodEnd(t *testing.T) {
	backend := newMemoryBackend()
	svc := newTestService(backend)
	ctx := context.Background()

	periodEnd := time.Now().AddDate(0, 0, 30).Truncate(time.Second)
	rec, err := svc.ChangeTier(ctx, 1, TierPremium, &periodEnd)
	require.NoError(t, err)
	require.NotNil(t, rec.RenewsOn)
	assert.True(t, periodEnd.Equal(*rec.RenewsOn))
}

func TestChangeTierSurfacesWriteFailure(t *testing.T) {
	backend := newMemoryBackend()
	svc := newTestService(backend)
	ctx := context.Background()

	svc.Record(ctx, 1)
	backend.mergeErr = errBackendDown

	_, err := svc.ChangeTier(ctx, 1, TierPremium, nil)
	assert.ErrorIs(t, err, errBackendDown)

	backend.mergeErr = nil
	assert.Equal(t, string(TierFree), svc.Record(ctx, 1).Tier)
}

func TestQueriesDegradeOnBrokenBackend(t *testing.T) {
	backend := newMemoryBackend()
	backend.getErr = errBackendDown
	svc := newTestService(backend)

	// The degraded record still answers every query as FREE/zero-usage.
	rec := svc.Record(context.Background(), 1)
	assert.True(t, svc.CanAddItem(rec, 10))
	assert.False(t, svc.CanImportCSV(rec))
	assert.True(t, svc.CanUseAIFeature(rec))
	assert.False(t, svc.HasFeature(rec, AdvancedAnalytics))
}
