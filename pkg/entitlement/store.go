package entitlement

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"humidorhub_backend/internal/model"
)

// ErrNotFound is returned by a Backend when no record exists for the user.
var ErrNotFound = errors.New("subscription record not found")

// Backend is the minimal document access the store needs: one subscription
// document per user, partial merge-style updates. Column keys for Merge are
// tier, status, ai_lookups_used and renews_on.
type Backend interface {
	Get(ctx context.Context, userID uint) (*model.SubscriptionRecord, error)
	Put(ctx context.Context, rec *model.SubscriptionRecord) error
	Merge(ctx context.Context, userID uint, fields map[string]interface{}) error
}

// GormBackend keeps subscription documents as one row per user in Postgres.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (b *GormBackend) Get(ctx context.Context, userID uint) (*model.SubscriptionRecord, error) {
	var rec model.SubscriptionRecord
	err := b.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (b *GormBackend) Put(ctx context.Context, rec *model.SubscriptionRecord) error {
	return b.db.WithContext(ctx).Create(rec).Error
}

func (b *GormBackend) Merge(ctx context.Context, userID uint, fields map[string]interface{}) error {
	res := b.db.WithContext(ctx).
		Model(&model.SubscriptionRecord{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Store reads and writes the per-user SubscriptionRecord. Reads never fail:
// transient backend errors degrade to the FREE default so callers can keep
// serving. Writes surface their errors.
type Store struct {
	backend Backend
	log     zerolog.Logger
}

func NewStore(backend Backend, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		log:     log.With().Str("component", "subscription_store").Logger(),
	}
}

// DefaultRecord is the record every user has before anything is persisted.
func DefaultRecord(userID uint) *model.SubscriptionRecord {
	return &model.SubscriptionRecord{
		UserID: userID,
		Tier:   string(TierFree),
		Status: model.SubscriptionStatusActive,
	}
}

// Load returns the user's subscription record, creating and persisting the
// FREE default on the first read so subsequent loads see the same record.
// On a backend error the FREE default is returned without being persisted.
func (s *Store) Load(ctx context.Context, userID uint) *model.SubscriptionRecord {
	rec, err := s.backend.Get(ctx, userID)
	if err == nil {
		return rec
	}

	if errors.Is(err, ErrNotFound) {
		rec = DefaultRecord(userID)
		if putErr := s.backend.Put(ctx, rec); putErr != nil {
			s.log.Warn().Err(putErr).Uint("user_id", userID).
				Msg("could not persist default subscription record")
		} else {
			s.log.Debug().Uint("user_id", userID).
				Msg("created default subscription record")
		}
		return rec
	}

	s.log.Warn().Err(err).Uint("user_id", userID).
		Msg("subscription load failed, serving free fallback")
	return DefaultRecord(userID)
}

// Save merges the given fields into the stored record; untouched fields keep
// their values. A failed save leaves the record as it was.
func (s *Store) Save(ctx context.Context, userID uint, fields map[string]interface{}) error {
	if err := s.backend.Merge(ctx, userID, fields); err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).
			Msg("subscription save failed")
		return err
	}
	s.log.Debug().Uint("user_id", userID).Msg("subscription record updated")
	return nil
}
