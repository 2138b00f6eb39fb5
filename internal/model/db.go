package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	HashedPassword string `gorm:"size:128;not null" json:"-"`
	CreatedAt      time.Time
}

// Plan is immutable reference data; rows are seeded at startup and only
// read afterwards.
type Plan struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency     string          `gorm:"size:8;not null" json:"currency"`
	Recurrence   string          `gorm:"size:32;not null" json:"recurrence"`
	Duration     string          `gorm:"size:32;not null" json:"duration"`
	MonthlyQuota int64           `gorm:"not null" json:"monthly_quota"`
}

// Subscription tracks one checkout attempt from redirect to terminal state.
// APIKeyPlain is the one-time disclosure stash: set when the key is minted,
// cleared by the first return-page read, never repopulated.
type Subscription struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	OrderID               string    `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	CustomerEmail         string    `gorm:"size:255;index;not null" json:"customer_email"`
	FirstName             string    `gorm:"size:64" json:"first_name"`
	LastName              string    `gorm:"size:64" json:"last_name"`
	PlanID                uint      `gorm:"index;not null" json:"plan_id"`
	Status                Status    `gorm:"size:32;index;not null" json:"status"`
	PayhereSubscriptionID string    `gorm:"size:64" json:"payhere_subscription_id,omitempty"`
	APIKeyID              *uint     `json:"api_key_id,omitempty"`
	APIKeyPlain           *string   `json:"-"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// APIKey stores only the sha256 digest of the issued secret.
type APIKey struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	KeyHash        string `gorm:"size:64;uniqueIndex;not null" json:"-"`
	OwnerEmail     string `gorm:"size:255;index;not null" json:"owner_email"`
	Active         bool   `gorm:"not null" json:"active"`
	QuotaRemaining int64  `gorm:"not null" json:"quota_remaining"`
	CreatedAt      time.Time
}
