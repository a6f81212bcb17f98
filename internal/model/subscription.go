package model

import "time"

// Subscription statuses. Only "active" is used today; the rest of the
// billing lifecycle (past_due, cancelled, ...) is reserved.
const (
	SubscriptionStatusActive = "active"
)

// SubscriptionRecord is the single per-user subscription document. The JSON
// names (tier, status, aiLookupsUsed, renewsOn) are the wire format already
// stored for existing users and must not change.
type SubscriptionRecord struct {
	ID            uint       `json:"-" gorm:"primarykey"`
	UserID        uint       `json:"-" gorm:"uniqueIndex;not null"`
	Tier          string     `json:"tier" gorm:"not null;default:'FREE'"`
	Status        string     `json:"status" gorm:"not null;default:'active'"`
	AILookupsUsed int        `json:"aiLookupsUsed" gorm:"column:ai_lookups_used;not null;default:0"`
	RenewsOn      *time.Time `json:"renewsOn,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"-"`

	// Billing references, never exposed on the wire.
	StripeCustomerID     string `json:"-" gorm:"index"`
	StripeSubscriptionID string `json:"-" gorm:"index"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
