package entitlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"humidorhub_backend/internal/model"
)

// memoryBackend is an in-memory document backend used by the store and
// service tests. It applies the same merge keys the gorm backend does.
type memoryBackend struct {
	mu   sync.Mutex
	recs map[uint]*model.SubscriptionRecord

	getErr   error
	putErr   error
	mergeErr error

	puts   int
	merges int
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{recs: map[uint]*model.SubscriptionRecord{}}
}

var errBackendDown = errors.New("backend unavailable")

func (b *memoryBackend) Get(ctx context.Context, userID uint) (*model.SubscriptionRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.getErr != nil {
		return nil, b.getErr
	}
	rec, ok := b.recs[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (b *memoryBackend) Put(ctx context.Context, rec *model.SubscriptionRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.putErr != nil {
		return b.putErr
	}
	b.puts++
	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	b.recs[rec.UserID] = &cp
	return nil
}

func (b *memoryBackend) Merge(ctx context.Context, userID uint, fields map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.mergeErr != nil {
		return b.mergeErr
	}
	rec, ok := b.recs[userID]
	if !ok {
		return ErrNotFound
	}
	b.merges++

	for col, val := range fields {
		switch col {
		case "tier":
			rec.Tier = val.(string)
		case "status":
			rec.Status = val.(string)
		case "ai_lookups_used":
			rec.AILookupsUsed = val.(int)
		case "renews_on":
			switch v := val.(type) {
			case nil:
				rec.RenewsOn = nil
			case time.Time:
				rec.RenewsOn = &v
			case *time.Time:
				rec.RenewsOn = v
			}
		}
	}
	return nil
}
