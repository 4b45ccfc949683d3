package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"creator-funnel/internal/config"
)

// The provider reports duplicate phones only as free text in the signup error body.
const accountTakenMarker = "already been taken"

var ErrAccountExists = errors.New("clubzila: account already exists")

// ClubzilaError is a non-2xx or success:false answer from the provider.
type ClubzilaError struct {
	Op     string
	Status int
	Body   string
	Code   error
}

func (e *ClubzilaError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.Status, e.Body)
}

func (e *ClubzilaError) Is(target error) bool {
	return e.Code != nil && target == e.Code
}

type ClubzilaClient interface {
	CreateAccount(ctx context.Context, phoneNumber, name string) (*ClubzilaAccount, error)
	LookupAccount(ctx context.Context, phoneNumber string) (*ClubzilaAccount, error)
	TriggerPayment(ctx context.Context, req *PaymentRequest) (*PaymentResult, error)
	CheckSubscription(ctx context.Context, accountRef, creatorRef int64, phoneNumber string) (bool, error)
}

type ClubzilaAccount struct {
	Ref      int64
	Username string
}

type PaymentRequest struct {
	AccountRef  int64
	CreatorRef  int64
	PhoneNumber string
	Amount      decimal.Decimal
}

type PaymentResult struct {
	TransactionID string
	Status        string
	Raw           json.RawMessage
}

type clubzilaClientImpl struct {
	httpClient      *http.Client
	baseApiURL      string
	apiKey          string
	defaultPassword string
	countryCode     string
	referredBy      int64
	log             *zap.Logger
}

type clubzilaUser struct {
	ID       json.RawMessage `json:"id"`
	Username string          `json:"username"`
}

type clubzilaUserResponse struct {
	Success bool            `json:"success"`
	User    *clubzilaUser   `json:"user"`
	Errors  json.RawMessage `json:"errors"`
	Message string          `json:"message"`
}

type clubzilaPaymentResponse struct {
	Success       *bool  `json:"success"`
	TransactionID string `json:"transaction_id"`
	Data          struct {
		PaymentID json.RawMessage `json:"payment_id"`
		Status    string          `json:"status"`
	} `json:"data"`
}

type clubzilaCheckResponse struct {
	Data struct {
		HasActiveSubscription bool `json:"has_active_subscription"`
	} `json:"data"`
}

func NewClubzilaClient(cfg *config.Clubzila, log *zap.Logger) ClubzilaClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &clubzilaClientImpl{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseApiURL:      strings.TrimRight(cfg.BaseApiURL, "/"),
		apiKey:          cfg.APIKey,
		defaultPassword: cfg.DefaultPassword,
		countryCode:     cfg.CountryCode,
		referredBy:      cfg.ReferredBy,
		log:             log.With(zap.String("component", "clubzila_client")),
	}
}

func (c *clubzilaClientImpl) CreateAccount(ctx context.Context, phoneNumber, name string) (*ClubzilaAccount, error) {
	if name == "" {
		name = "User " + phoneNumber
	}

	payload := map[string]interface{}{
		"name":                 name,
		"phone_number":         phoneNumber,
		"password":             c.defaultPassword,
		"countryCode":          c.countryCode,
		"agree_gdpr":           true,
		"g-recaptcha-response": true,
		"referred_by":          c.referredBy,
	}

	var res clubzilaUserResponse
	status, body, err := c.post(ctx, "/funnel/signup", payload, &res)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 || !res.Success || res.User == nil {
		return nil, signupError(status, body, res)
	}

	// signup answers with username "u<ref>"; id is the fallback
	account, ok := accountFromUser(res.User, true)
	if !ok {
		return nil, &ClubzilaError{Op: "Signup", Status: status, Body: "no user ID found in signup response"}
	}
	return account, nil
}

func (c *clubzilaClientImpl) LookupAccount(ctx context.Context, phoneNumber string) (*ClubzilaAccount, error) {
	var res clubzilaUserResponse
	status, body, err := c.post(ctx, "/funnel/get-user", map[string]string{
		"phone_number": phoneNumber,
	}, &res)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, &ClubzilaError{Op: "Get user", Status: status, Body: body}
	}
	if !res.Success || res.User == nil {
		return nil, &ClubzilaError{Op: "Get user", Status: status, Body: errorsOrDefault(res, "invalid get-user response structure")}
	}

	account, ok := accountFromUser(res.User, false)
	if !ok {
		return nil, &ClubzilaError{Op: "Get user", Status: status, Body: "no user ID found in get-user response"}
	}
	return account, nil
}

func (c *clubzilaClientImpl) TriggerPayment(ctx context.Context, req *PaymentRequest) (*PaymentResult, error) {
	payload := map[string]interface{}{
		"auth_id":      req.AccountRef,
		"creator_id":   req.CreatorRef,
		"phone_number": req.PhoneNumber,
		"amount":       req.Amount.InexactFloat64(),
	}

	var res clubzilaPaymentResponse
	status, body, err := c.post(ctx, "/funnel/pay-subscription", payload, &res)
	if err != nil {
		return nil, err
	}

	if status < 200 || status >= 300 {
		return nil, &ClubzilaError{Op: "Payment", Status: status, Body: body}
	}
	if res.Success != nil && !*res.Success {
		return nil, &ClubzilaError{Op: "Payment", Status: status, Body: body}
	}

	txID := res.TransactionID
	if txID == "" {
		txID = rawID(res.Data.PaymentID)
	}
	paymentStatus := res.Data.Status
	if paymentStatus == "" {
		paymentStatus = "pending"
	}

	return &PaymentResult{
		TransactionID: txID,
		Status:        paymentStatus,
		Raw:           json.RawMessage(body),
	}, nil
}

func (c *clubzilaClientImpl) CheckSubscription(ctx context.Context, accountRef, creatorRef int64, phoneNumber string) (bool, error) {
	var res clubzilaCheckResponse
	status, body, err := c.post(ctx, "/funnel/check-subscription", map[string]interface{}{
		"user_id":      accountRef,
		"creator_id":   creatorRef,
		"phone_number": phoneNumber,
	}, &res)
	if err != nil {
		return false, err
	}

	if status < 200 || status >= 300 {
		return false, &ClubzilaError{Op: "Subscription check", Status: status, Body: body}
	}
	return res.Data.HasActiveSubscription, nil
}

// post sends a JSON request and decodes a 2xx JSON body into out. The raw body is always returned.
func (c *clubzilaClientImpl) post(ctx context.Context, path string, payload interface{}, out interface{}) (int, string, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return 0, "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "creator-funnel/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("clubzila request %s: %w", path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("read clubzila response: %w", err)
	}
	body := string(b)

	c.log.Debug("clubzila response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, out); err != nil {
			return resp.StatusCode, body, fmt.Errorf("decode clubzila response: %w", err)
		}
	}

	return resp.StatusCode, body, nil
}

func signupError(status int, body string, res clubzilaUserResponse) error {
	detail := body
	if status >= 200 && status < 300 {
		detail = errorsOrDefault(res, "invalid signup response structure")
	}

	e := &ClubzilaError{Op: "Signup", Status: status, Body: detail}
	if strings.Contains(detail, accountTakenMarker) || strings.Contains(body, accountTakenMarker) {
		e.Code = ErrAccountExists
	}
	return e
}

func errorsOrDefault(res clubzilaUserResponse, fallback string) string {
	if len(res.Errors) > 0 && string(res.Errors) != "null" {
		return string(res.Errors)
	}
	if res.Message != "" {
		return res.Message
	}
	return fallback
}

func accountFromUser(u *clubzilaUser, usernameFirst bool) (*ClubzilaAccount, bool) {
	fromUsername := func() (int64, bool) {
		if u.Username == "" {
			return 0, false
		}
		ref, err := strconv.ParseInt(strings.TrimPrefix(u.Username, "u"), 10, 64)
		return ref, err == nil
	}
	fromID := func() (int64, bool) {
		id := rawID(u.ID)
		if id == "" {
			return 0, false
		}
		ref, err := strconv.ParseInt(id, 10, 64)
		return ref, err == nil
	}

	order := []func() (int64, bool){fromID, fromUsername}
	if usernameFirst {
		order = []func() (int64, bool){fromUsername, fromID}
	}
	for _, f := range order {
		if ref, ok := f(); ok {
			return &ClubzilaAccount{Ref: ref, Username: u.Username}, true
		}
	}
	return nil, false
}

// rawID reads an id the provider may send either as a number or as a string.
func rawID(raw json.RawMessage) string {
	v := strings.TrimSpace(string(raw))
	if v == "" || v == "null" {
		return ""
	}
	return strings.Trim(v, `"`)
}
