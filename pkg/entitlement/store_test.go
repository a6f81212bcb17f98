package entitlement

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humidorhub_backend/internal/model"
)

func newTestStore(backend Backend) *Store {
	return NewStore(backend, zerolog.Nop())
}

func TestLoadFirstReadPersistsDefault(t *testing.T) {
	backend := newMemoryBackend()
	store := newTestStore(backend)
	ctx := context.Background()

	rec := store.Load(ctx, 42)
	require.NotNil(t, rec)
	assert.Equal(t, string(TierFree), rec.Tier)
	assert.Equal(t, model.SubscriptionStatusActive, rec.Status)
	assert.Equal(t, 0, rec.AILookupsUsed)
	assert.Nil(t, rec.RenewsOn)

	// The default is persisted, not re-synthesized on every call.
	again := store.Load(ctx, 42)
	assert.Equal(t, rec.Tier, again.Tier)
	assert.Equal(t, rec.AILookupsUsed, again.AILookupsUsed)
	assert.Equal(t, 1, backend.puts)
}

func TestLoadBackendErrorReturnsUnpersistedFallback(t *testing.T) {
	backend := newMemoryBackend()
	backend.getErr = errBackendDown
	store := newTestStore(backend)

	rec := store.Load(context.Background(), 7)
	require.NotNil(t, rec)
	assert.Equal(t, string(TierFree), rec.Tier)
	assert.Equal(t, 0, rec.AILookupsUsed)

	// Fallback must not be written through a broken backend.
	assert.Equal(t, 0, backend.puts)
}

func TestLoadSurvivesFailedDefaultPersist(t *testing.T) {
	backend := newMemoryBackend()
	backend.putErr = errBackendDown
	store := newTestStore(backend)

	rec := store.Load(context.Background(), 7)
	require.NotNil(t, rec)
	assert.Equal(t, string(TierFree), rec.Tier)
}

func TestSaveMergesWithoutReplacing(t *testing.T) {
	backend := newMemoryBackend()
	store := newTestStore(backend)
	ctx := context.Background()

	_, err := NewService(store, zerolog.Nop()).ChangeTier(ctx, 9, TierPremium, nil)
	require.NoError(t, err)

	err = store.Save(ctx, 9, map[string]interface{}{"ai_lookups_used": 3})
	require.NoError(t, err)

	rec := store.Load(ctx, 9)
	assert.Equal(t, 3, rec.AILookupsUsed)
	// Untouched fields keep their values.
	assert.Equal(t, string(TierPremium), rec.Tier)
	assert.NotNil(t, rec.RenewsOn)
}

func TestSaveSurfacesBackendError(t *testing.T) {
	backend := newMemoryBackend()
	store := newTestStore(backend)
	ctx := context.Background()

	store.Load(ctx, 3)
	backend.mergeErr = errBackendDown

	err := store.Save(ctx, 3, map[string]interface{}{"ai_lookups_used": 1})
	assert.ErrorIs(t, err, errBackendDown)

	// Record state is whatever it was before the attempted write.
	backend.mergeErr = nil
	rec := store.Load(ctx, 3)
	assert.Equal(t, 0, rec.AILookupsUsed)
}

func TestStoreIsolatesUsers(t *testing.T) {
	backend := newMemoryBackend()
	store := newTestStore(backend)
	ctx := context.Background()

	store.Load(ctx, 1)
	store.Load(ctx, 2)

	require.NoError(t, store.Save(ctx, 1, map[string]interface{}{"ai_lookups_used": 4}))

	assert.Equal(t, 4, store.Load(ctx, 1).AILookupsUsed)
	assert.Equal(t, 0, store.Load(ctx, 2).AILookupsUsed)
}
