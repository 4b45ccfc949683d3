package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// -------- creators --------

type RegisterCreatorRequest struct {
	Email              string          `json:"email" validate:"required,email"`
	PhoneNumber        string          `json:"phone_number" validate:"required"`
	Name               string          `json:"name" validate:"required"`
	BusinessName       string          `json:"business_name"`
	AvatarURL          string          `json:"avatar_url" validate:"omitempty,url"`
	ClubzilaCreatorID  string          `json:"clubzila_creator_id" validate:"required"`
	ClubzilaAuthID     string          `json:"clubzila_auth_id" validate:"required"`
	SubscriptionAmount decimal.Decimal `json:"subscription_amount"`
	Currency           string          `json:"currency"`
}

type UpdateCreatorStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active suspended"`
}

type CreatorFilter struct {
	Status string `query:"status"`
	Search string `query:"search"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

// -------- landing pages --------

type CreateLandingPageRequest struct {
	CreatorID          string `json:"creator_id" validate:"required"`
	Title              string `json:"title" validate:"required"`
	Description        string `json:"description"`
	Template           string `json:"template" validate:"required"`
	CreatorIDDisplay   string `json:"creator_id_display" validate:"required"`
	SuccessRedirectURL string `json:"success_redirect_url" validate:"required"`
	FailureRedirectURL string `json:"failure_redirect_url"`
	CustomDomain       string `json:"custom_domain"`
}

// PublicLandingPageRequest is the camelCase body accepted by POST /api/landing-pages.
type PublicLandingPageRequest struct {
	PageID             string `json:"pageId" validate:"required"`
	CreatorID          string `json:"creatorId" validate:"required"`
	Title              string `json:"title" validate:"required"`
	Description        string `json:"description"`
	Template           string `json:"template" validate:"required"`
	CreatorIDDisplay   string `json:"creatorIdDisplay"`
	SuccessRedirectURL string `json:"successRedirectUrl"`
	FailureRedirectURL string `json:"failureRedirectUrl"`
}

// UpdateLandingPageRequest only touches fields that are present.
type UpdateLandingPageRequest struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	Template           *string `json:"template"`
	CreatorIDDisplay   *string `json:"creator_id_display"`
	SuccessRedirectURL *string `json:"success_redirect_url"`
	FailureRedirectURL *string `json:"failure_redirect_url"`
	CustomDomain       *string `json:"custom_domain"`
	Status             *string `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type LandingPageFilter struct {
	CreatorID string `query:"creator_id"`
	Status    string `query:"status"`
	Template  string `query:"template"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

// PageData is what a visitor-facing page needs to render and to start a subscription.
type PageData struct {
	PageID             string          `json:"pageId"`
	Template           string          `json:"template"`
	CreatorName        string          `json:"creatorName"`
	Description        string          `json:"description,omitempty"`
	CreatorIDDisplay   string          `json:"creatorIdDisplay"`
	SuccessRedirectURL string          `json:"successRedirectUrl"`
	FailureRedirectURL string          `json:"failureRedirectUrl"`
	SubscriptionAmount decimal.Decimal `json:"subscriptionAmount"`
	Currency           string          `json:"currency"`
}

type PublishResult struct {
	PageID    string `json:"pageId"`
	PublicURL string `json:"publicUrl"`
}

type TemplateInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// -------- analytics --------

type TrackViewRequest struct {
	PageID string `json:"pageId" validate:"required"`
}

type PageAnalytics struct {
	PageID         string  `json:"pageId"`
	Views          int64   `json:"views"`
	Subscriptions  int64   `json:"subscriptions"`
	ConversionRate float64 `json:"conversion_rate"`
}

type CreatorAnalytics struct {
	CreatorID          string          `json:"creatorId"`
	TotalViews         int64           `json:"total_views"`
	TotalSubscriptions int64           `json:"total_subscriptions"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	LandingPagesCount  int             `json:"landing_pages_count"`
}

// -------- subscriptions --------

type SubscribeRequest struct {
	PageID       string `json:"pageId"`
	PhoneNumber  string `json:"phoneNumber"`
	TemplateType string `json:"templateType"`
	UserName     string `json:"userName"`
}

type SubscribeResult struct {
	UserID           int64           `json:"userId"`
	CreatorID        int64           `json:"creatorId"`
	SubscriptionID   string          `json:"subscription_id"`
	Status           string          `json:"status"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	ClubzilaResponse json.RawMessage `json:"clubzila_response,omitempty"`
	TransactionID    string          `json:"-"`
}

type SubscribeResponse struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	TransactionID string           `json:"transactionId"`
	Data          *SubscribeResult `json:"data"`
}

type WebhookPayload struct {
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Reason        string `json:"reason"`
}

type ListResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination"`
}
