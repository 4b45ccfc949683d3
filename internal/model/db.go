package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatorStatus string

const (
	CreatorPending   CreatorStatus = "pending"
	CreatorActive    CreatorStatus = "active"
	CreatorSuspended CreatorStatus = "suspended"
)

func (s CreatorStatus) Valid() bool {
	switch s {
	case CreatorPending, CreatorActive, CreatorSuspended:
		return true
	}
	return false
}

type PageStatus string

const (
	PageDraft     PageStatus = "draft"
	PagePublished PageStatus = "published"
	PageArchived  PageStatus = "archived"
)

func (s PageStatus) Valid() bool {
	switch s {
	case PageDraft, PagePublished, PageArchived:
		return true
	}
	return false
}

type SubscriptionStatus string

const (
	SubscriptionPending   SubscriptionStatus = "pending"
	SubscriptionCompleted SubscriptionStatus = "completed"
	SubscriptionFailed    SubscriptionStatus = "failed"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

func (s SubscriptionStatus) Terminal() bool {
	return s == SubscriptionCompleted || s == SubscriptionFailed || s == SubscriptionCancelled
}

type Creator struct {
	ID                 string          `gorm:"primaryKey;size:36;not null" json:"id"`
	Email              string          `gorm:"size:191;index;not null" json:"email"`
	PhoneNumber        string          `gorm:"size:32;not null" json:"phone_number"`
	Name               string          `gorm:"size:191;not null" json:"name"`
	BusinessName       string          `gorm:"size:191" json:"business_name,omitempty"`
	AvatarURL          string          `gorm:"size:512" json:"avatar_url,omitempty"`
	Status             CreatorStatus   `gorm:"size:16;index;not null" json:"status"`
	ClubzilaCreatorID  string          `gorm:"size:64;index;not null" json:"clubzila_creator_id"`
	ClubzilaAuthID     string          `gorm:"size:64;not null" json:"clubzila_auth_id"`
	SubscriptionAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subscription_amount"`
	Currency           string          `gorm:"size:8;not null" json:"currency"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	LastLoginAt        *time.Time      `json:"last_login_at,omitempty"`
}

type LandingPage struct {
	ID                 string     `gorm:"primaryKey;size:36;not null" json:"id"`
	PageID             string     `gorm:"size:128;uniqueIndex;not null" json:"page_id"` // public url identifier
	CreatorID          *string    `gorm:"size:36;index" json:"creator_id,omitempty"`     // nil for pages created without a registered creator
	Title              string     `gorm:"size:191;not null" json:"title"`
	Description        string     `gorm:"type:text" json:"description,omitempty"`
	Template           string     `gorm:"size:32;index;not null" json:"template"`
	CustomDomain       string     `gorm:"size:191" json:"custom_domain,omitempty"`
	Status             PageStatus `gorm:"size:16;index;not null" json:"status"`
	CreatorIDDisplay   string     `gorm:"size:64" json:"creator_id_display"`
	SuccessRedirectURL string     `gorm:"size:512" json:"success_redirect_url"`
	FailureRedirectURL string     `gorm:"size:512" json:"failure_redirect_url"`

	// provider refs, fixed when the page id is built
	CreatorRef *int64 `json:"creator_ref,omitempty"`
	AccountRef *int64 `json:"account_ref,omitempty"`

	Views          int64   `gorm:"not null;default:0" json:"views"`
	Subscriptions  int64   `gorm:"not null;default:0" json:"subscriptions"`
	ConversionRate float64 `gorm:"not null;default:0" json:"conversion_rate"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

type Subscription struct {
	ID                    string             `gorm:"primaryKey;size:36;not null" json:"id"`
	LandingPageID         string             `gorm:"size:128;index;not null" json:"landing_page_id"`
	CreatorID             *string            `gorm:"size:36;index" json:"creator_id,omitempty"`
	CreatorRef            int64              `gorm:"index:idx_subscriptions_phone_creator,priority:2;not null" json:"creator_ref"`
	AccountRef            int64              `gorm:"not null" json:"account_ref"`
	UserPhoneNumber       string             `gorm:"size:32;index:idx_subscriptions_phone_creator,priority:1;not null" json:"user_phone_number"`
	UserName              string             `gorm:"size:191" json:"user_name,omitempty"`
	Amount                decimal.Decimal    `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency              string             `gorm:"size:8;not null" json:"currency"`
	Status                SubscriptionStatus `gorm:"size:16;index;not null" json:"status"` // pending, completed, failed, cancelled
	ClubzilaTransactionID string             `gorm:"size:128;index" json:"clubzila_transaction_id,omitempty"`
	ClubzilaPaymentStatus string             `gorm:"size:64" json:"clubzila_payment_status,omitempty"`
	SuccessRedirectURL    string             `gorm:"size:512" json:"success_redirect_url,omitempty"`
	FailureReason         string             `gorm:"size:255" json:"failure_reason,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	CompletedAt           *time.Time         `json:"completed_at,omitempty"`
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
