package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/client"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/model"
	"creator-funnel/internal/pageid"
	"creator-funnel/internal/repository"
)

const (
	WebhookSignatureHeader = "X-Clubzila-Signature"

	expiredReason = "timeout"
)

var ErrAlreadySubscribed = apperr.Conflict("An active subscription already exists for this phone number")

type SubscriptionService interface {
	Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.SubscribeResult, error)
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
	// ExpirePending fails pending subscriptions older than the pending TTL and returns how many changed.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type SubscriptionConfig struct {
	Amount            decimal.Decimal
	Currency          string
	PendingTTL        time.Duration
	WebhookSecret     string
	CheckSubscription bool
}

type subscriptionServiceImpl struct {
	clubzila         client.ClubzilaClient
	pageRepo         repository.LandingPageRepository
	creatorRepo      repository.CreatorRepository
	subRepo          repository.SubscriptionRepository
	webhookEventRepo repository.WebhookEventRepository
	cfg              SubscriptionConfig
	now              func() time.Time
	log              *zap.Logger
}

func NewSubscriptionService(
	clubzila client.ClubzilaClient,
	pageRepo repository.LandingPageRepository,
	creatorRepo repository.CreatorRepository,
	subRepo repository.SubscriptionRepository,
	webhookEventRepo repository.WebhookEventRepository,
	cfg SubscriptionConfig,
	log *zap.Logger,
) SubscriptionService {
	if cfg.Amount.IsZero() {
		cfg.Amount = decimal.NewFromInt(500)
	}
	if cfg.Currency == "" {
		cfg.Currency = "TZS"
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 30 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &subscriptionServiceImpl{
		clubzila:         clubzila,
		pageRepo:         pageRepo,
		creatorRepo:      creatorRepo,
		subRepo:          subRepo,
		webhookEventRepo: webhookEventRepo,
		cfg:              cfg,
		now:              time.Now,
		log:              log.With(zap.String("component", "subscription_service")),
	}
}

// target is what a payment is charged against once the page has been resolved.
type target struct {
	page       *model.LandingPage
	template   string
	creatorRef int64
	accountRef *int64
	amount     decimal.Decimal
	currency   string
}

func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, req *dto.SubscribeRequest) (*dto.SubscribeResult, error) {
	pageID := strings.TrimSpace(req.PageID)
	phone := strings.TrimSpace(req.PhoneNumber)
	if pageID == "" || phone == "" {
		return nil, apperr.Validation("Missing required fields: pageId, phoneNumber")
	}

	t, err := s.resolveTarget(ctx, pageID, req.TemplateType)
	if err != nil {
		return nil, err
	}
	log := s.log.With(
		zap.String("page_id", pageID),
		zap.String("template", t.template),
		zap.Int64("creator_ref", t.creatorRef),
	)

	_, err = s.subRepo.FindActive(ctx, phone, t.creatorRef, s.now().Add(-s.cfg.PendingTTL))
	if err == nil {
		log.Info("duplicate subscription rejected")
		return nil, ErrAlreadySubscribed
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing subscription: %w", err)
	}

	var accountRef int64
	if pageid.RequiresAccountResolution(t.template) {
		account, err := s.resolveAccount(ctx, phone, req.UserName)
		if err != nil {
			log.Warn("account resolution failed", zap.Error(err))
			return nil, err
		}
		accountRef = account.Ref
	} else {
		if t.accountRef == nil {
			return nil, apperr.Validation("Invalid user ID. User ID must be a number.")
		}
		accountRef = *t.accountRef
	}

	if s.cfg.CheckSubscription {
		active, err := s.clubzila.CheckSubscription(ctx, accountRef, t.creatorRef, phone)
		if err != nil {
			log.Warn("provider subscription check failed", zap.Error(err))
		} else if active {
			return nil, ErrAlreadySubscribed
		}
	}

	payment, err := s.clubzila.TriggerPayment(ctx, &client.PaymentRequest{
		AccountRef:  accountRef,
		CreatorRef:  t.creatorRef,
		PhoneNumber: phone,
		Amount:      t.amount,
	})
	if err != nil {
		log.Error("payment trigger failed", zap.Int64("account_ref", accountRef), zap.Error(err))
		return nil, paymentError(err)
	}

	sub := &model.Subscription{
		ID:                    uuid.NewString(),
		LandingPageID:         pageID,
		CreatorRef:            t.creatorRef,
		AccountRef:            accountRef,
		UserPhoneNumber:       phone,
		UserName:              req.UserName,
		Amount:                t.amount,
		Currency:              t.currency,
		Status:                model.SubscriptionPending,
		ClubzilaTransactionID: payment.TransactionID,
		ClubzilaPaymentStatus: payment.Status,
	}
	if sub.ClubzilaTransactionID == "" {
		sub.ClubzilaTransactionID = sub.ID
	}
	if t.page != nil {
		sub.CreatorID = t.page.CreatorID
		sub.SuccessRedirectURL = t.page.SuccessRedirectURL
	}

	// payment is already triggered at this point, so storage failures are only logged
	if err := s.subRepo.Create(ctx, sub); err != nil {
		log.Error("store subscription failed",
			zap.String("transaction_id", sub.ClubzilaTransactionID),
			zap.Error(err),
		)
	}
	if t.page != nil {
		if err := s.pageRepo.IncrementSubscriptions(ctx, pageID); err != nil {
			log.Warn("increment page subscriptions failed", zap.Error(err))
		}
	}

	log.Info("payment initiated",
		zap.Int64("account_ref", accountRef),
		zap.String("transaction_id", sub.ClubzilaTransactionID),
	)

	return &dto.SubscribeResult{
		UserID:           accountRef,
		CreatorID:        t.creatorRef,
		SubscriptionID:   sub.ClubzilaTransactionID,
		Status:           string(model.SubscriptionPending),
		Amount:           t.amount,
		Currency:         t.currency,
		ClubzilaResponse: payment.Raw,
		TransactionID:    sub.ClubzilaTransactionID,
	}, nil
}

func (s *subscriptionServiceImpl) resolveTarget(ctx context.Context, pageID, templateType string) (*target, error) {
	template := pageid.Normalize(templateType)
	if !pageid.Known(template) {
		return nil, apperr.Validation("Invalid template type: " + template)
	}

	t := &target{
		template: template,
		amount:   s.cfg.Amount,
		currency: s.cfg.Currency,
	}

	page, err := s.pageRepo.FindByPageID(ctx, pageID)
	switch {
	case err == nil:
		if page.Status == model.PageArchived {
			return nil, ErrPageNotFound
		}
		t.page = page
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("find landing page: %w", err)
	}

	if t.page != nil && t.page.CreatorRef != nil {
		t.template = pageid.Normalize(t.page.Template)
		if t.template != template {
			s.log.Warn("template type differs from stored page, using stored",
				zap.String("page_id", pageID),
				zap.String("requested_template", template),
				zap.String("stored_template", t.template),
			)
		}
		t.creatorRef = *t.page.CreatorRef
		t.accountRef = t.page.AccountRef
	} else {
		ref, err := pageid.Parse(pageID, template)
		if errors.Is(err, pageid.ErrInvalidAccountRef) {
			return nil, apperr.ValidationDetail("Invalid user ID. User ID must be a number.", err.Error())
		}
		if err != nil {
			return nil, apperr.ValidationDetail(
				fmt.Sprintf("Invalid creator ID: %s. Creator ID must be a number.", creatorPart(pageID, template)),
				"Creator ID must be a valid integer",
			)
		}
		t.creatorRef = ref.CreatorRef
		t.accountRef = ref.AccountRef
	}

	if t.page == nil || t.page.CreatorID == nil {
		return t, nil
	}

	creator, err := s.creatorRepo.Get(ctx, *t.page.CreatorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get page creator: %w", err)
	}
	if creator.Status != model.CreatorActive {
		return nil, apperr.Validation("Creator is not active")
	}
	if creator.SubscriptionAmount.IsPositive() {
		t.amount = creator.SubscriptionAmount
	}
	if creator.Currency != "" {
		t.currency = creator.Currency
	}
	return t, nil
}

// resolveAccount signs the phone up and falls back to a lookup only when the phone is already registered.
func (s *subscriptionServiceImpl) resolveAccount(ctx context.Context, phone, name string) (*client.ClubzilaAccount, error) {
	account, err := s.clubzila.CreateAccount(ctx, phone, name)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, client.ErrAccountExists) {
		return nil, apperr.Provider("User registration failed", err.Error())
	}

	account, err = s.clubzila.LookupAccount(ctx, phone)
	if err != nil {
		return nil, apperr.Provider("Failed to get existing user information", err.Error())
	}
	return account, nil
}

func paymentError(err error) error {
	var cerr *client.ClubzilaError
	if errors.As(err, &cerr) {
		return apperr.Provider(
			fmt.Sprintf("Payment failed: %d %s", cerr.Status, http.StatusText(cerr.Status)),
			cerr.Body,
		)
	}
	return apperr.Provider("Payment failed", err.Error())
}

func creatorPart(pageID, template string) string {
	parts := strings.Split(pageID, "-")
	idx := 0
	if template == pageid.TemplateModern {
		idx = 1
	}
	if idx < len(parts) {
		return parts[idx]
	}
	return ""
}

func (s *subscriptionServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if s.cfg.WebhookSecret != "" {
		if !VerifyWebhookSignature(s.cfg.WebhookSecret, body, headers.Get(WebhookSignatureHeader)) {
			return apperr.Unauthorized("Invalid webhook signature")
		}
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperr.ValidationDetail("Invalid webhook payload", err.Error())
	}
	if payload.TransactionID == "" {
		return apperr.Validation("Missing required field: transaction_id")
	}

	eventID := payload.EventID
	if eventID == "" {
		eventID = payload.TransactionID + ":" + payload.Status
	}
	log := s.log.With(
		zap.String("event_id", eventID),
		zap.String("transaction_id", payload.TransactionID),
		zap.String("provider_status", payload.Status),
	)

	seen, err := s.webhookEventRepo.Exists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if seen {
		log.Info("duplicate webhook event ignored")
		return nil
	}

	to, ok := mapProviderStatus(payload.Status)
	if !ok {
		log.Info("non-terminal webhook status ignored")
		return nil
	}

	sub, err := s.subRepo.FindByTransactionID(ctx, payload.TransactionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("Subscription not found")
	}
	if err != nil {
		return fmt.Errorf("find subscription: %w", err)
	}

	reason := ""
	if to != model.SubscriptionCompleted {
		reason = payload.Reason
		if reason == "" {
			reason = payload.Status
		}
	}

	changed, err := s.subRepo.Transition(ctx, sub.ID, to, payload.Status, reason, s.now())
	if err != nil {
		return fmt.Errorf("transition subscription: %w", err)
	}
	if changed {
		log.Info("subscription settled", zap.String("subscription_id", sub.ID), zap.String("status", string(to)))
	} else {
		log.Info("subscription already settled", zap.String("subscription_id", sub.ID), zap.String("status", string(sub.Status)))
	}

	if err := s.webhookEventRepo.MarkProcessed(ctx, eventID, payload.EventType); err != nil {
		return fmt.Errorf("mark webhook event processed: %w", err)
	}
	return nil
}

func (s *subscriptionServiceImpl) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.subRepo.ExpirePendingBefore(ctx, now.Add(-s.cfg.PendingTTL), now, expiredReason)
	if err != nil {
		return 0, fmt.Errorf("expire pending subscriptions: %w", err)
	}
	return n, nil
}

func mapProviderStatus(status string) (model.SubscriptionStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "successful", "completed", "paid":
		return model.SubscriptionCompleted, true
	case "failed", "declined", "error":
		return model.SubscriptionFailed, true
	case "cancelled", "canceled":
		return model.SubscriptionCancelled, true
	}
	return "", false
}

func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	expected, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(expected) == 0 {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), expected)
}
