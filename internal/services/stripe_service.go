package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bnbBack/internal/models"
	"bnbBack/internal/repositories"
)

const DefaultWebhookTolerance = 5 * time.Minute

var ErrPaymentGateway = errors.New("payment gateway error")

// StripeError is a non-2xx answer from the payment processor.
type StripeError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *StripeError) Error() string {
	return fmt.Sprintf("stripe: %d %s: %s", e.StatusCode, e.Type, e.Message)
}

func (e *StripeError) Unwrap() error { return ErrPaymentGateway }

type StripeConfig struct {
	BaseURL          string
	APIKey           string
	WebhookSecret    string
	WebhookTolerance time.Duration

	Client *http.Client
	Logger *slog.Logger
	Now    func() time.Time
}

// StripeService keeps the local stripe_charge table in sync with the processor.
type StripeService struct {
	baseURL   *url.URL
	apiKey    string
	secret    string
	tolerance time.Duration

	repo       *repositories.StripeChargeRepository
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

func NewStripeService(cfg StripeConfig, repo *repositories.StripeChargeRepository) (*StripeService, error) {
	if repo == nil {
		return nil, errors.New("stripe: repository is required")
	}
	u, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || u.Scheme == "" {
		return nil, fmt.Errorf("stripe: invalid base url %q", cfg.BaseURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	tolerance := cfg.WebhookTolerance
	if tolerance == 0 {
		tolerance = DefaultWebhookTolerance
	}

	s := &StripeService{
		baseURL:    u,
		apiKey:     cfg.APIKey,
		secret:     cfg.WebhookSecret,
		tolerance:  tolerance,
		repo:       repo,
		httpClient: client,
		logger:     logger,
		now:        now,
	}
	logger.Info("stripe initialized",
		"baseURL", u.Host,
		"apiKey_set", s.apiKey != "",
		"webhookSecret_set", s.secret != "",
	)
	return s, nil
}

// Enabled reports whether charges can be fetched from the processor.
func (s *StripeService) Enabled() bool { return s.apiKey != "" }

func (s *StripeService) GetCharge(ctx context.Context, stripeID string) (models.StripeCharge, error) {
	return s.repo.GetChargeByStripeID(ctx, stripeID)
}

// FetchCharge reads the charge object from the processor without storing it.
func (s *StripeService) FetchCharge(ctx context.Context, stripeID string) (models.StripeCharge, error) {
	if !s.Enabled() {
		return models.StripeCharge{}, fmt.Errorf("stripe: api key not configured: %w", ErrPaymentGateway)
	}
	stripeID = strings.TrimSpace(stripeID)
	if stripeID == "" {
		return models.StripeCharge{}, models.NewValidationError("stripe_id", "stripe id is required")
	}

	endpoint := s.baseURL.JoinPath("v1", "charges", stripeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return models.StripeCharge{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.StripeCharge{}, fmt.Errorf("stripe request: %v: %w", err, ErrPaymentGateway)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.StripeCharge{}, fmt.Errorf("stripe read: %v: %w", err, ErrPaymentGateway)
	}
	if resp.StatusCode == http.StatusNotFound {
		return models.StripeCharge{}, models.ErrChargeNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.StripeCharge{}, decodeStripeError(resp.StatusCode, body)
	}

	charge, err := decodeCharge(body)
	if err != nil {
		return models.StripeCharge{}, fmt.Errorf("stripe decode: %v: %w", err, ErrPaymentGateway)
	}
	return charge, nil
}

func (s *StripeService) SyncCharge(ctx context.Context, stripeID string) (models.StripeCharge, error) {
	charge, err := s.FetchCharge(ctx, stripeID)
	if err != nil {
		return models.StripeCharge{}, err
	}
	return s.repo.UpsertCharge(ctx, charge)
}

// SyncPending refreshes up to limit charges that may still change upstream and returns
// how many were stored. Individual failures are logged and skipped.
func (s *StripeService) SyncPending(ctx context.Context, limit int) (int, error) {
	pending, err := s.repo.GetPendingCharges(ctx, limit)
	if err != nil {
		return 0, err
	}
	synced := 0
	for _, c := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if _, err := s.SyncCharge(ctx, c.StripeID); err != nil {
			s.logger.Warn("charge sync failed", "stripe_id", c.StripeID, "err", err)
			continue
		}
		synced++
	}
	return synced, nil
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// HandleWebhook verifies the Stripe-Signature header and stores charge events.
// Other event types are accepted and ignored.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if err := s.VerifySignature(payload, signature); err != nil {
		return err
	}

	var evt stripeEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return models.NewValidationError("payload", "invalid event payload")
	}
	if !strings.HasPrefix(evt.Type, "charge.") || objectKind(evt.Data.Object) != "charge" {
		s.logger.Debug("stripe event ignored", "id", evt.ID, "type", evt.Type)
		return nil
	}

	charge, err := decodeCharge(evt.Data.Object)
	if err != nil {
		return models.NewValidationError("data.object", "invalid charge object")
	}
	if _, err := s.repo.UpsertCharge(ctx, charge); err != nil {
		return err
	}
	s.logger.Info("stripe charge stored", "event", evt.ID, "type", evt.Type, "stripe_id", charge.StripeID, "status", charge.Status)
	return nil
}

// VerifySignature checks a `t=<unix>,v1=<hex hmac>` header against HMAC-SHA256 of
// "<t>.<payload>" and rejects timestamps outside the tolerance window.
func (s *StripeService) VerifySignature(payload []byte, header string) error {
	if s.secret == "" {
		return fmt.Errorf("webhook secret not configured: %w", models.ErrInvalidSignature)
	}

	var (
		timestamp  string
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return models.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return models.ErrInvalidSignature
	}
	age := s.now().Sub(time.Unix(ts, 0))
	if age > s.tolerance || age < -s.tolerance {
		return fmt.Errorf("timestamp outside tolerance: %w", models.ErrInvalidSignature)
	}

	expected := computeSignature(s.secret, timestamp, payload)
	for _, sig := range signatures {
		got, err := hex.DecodeString(sig)
		if err == nil && hmac.Equal(got, expected) {
			return nil
		}
	}
	return models.ErrInvalidSignature
}

func computeSignature(secret, timestamp string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// objectKind reads the "object" discriminator of an event payload. charge.refund.* and
// charge.dispute.* events carry refunds and disputes, not charges.
func objectKind(data []byte) string {
	var head struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return ""
	}
	return head.Object
}

// chargeObject is the processor's wire format. Some fields are either an id or an
// expanded object.
type chargeObject struct {
	ID                  string          `json:"id"`
	Object              string          `json:"object"`
	Amount              int64           `json:"amount"`
	AmountRefunded      int64           `json:"amount_refunded"`
	BalanceTransaction  json.RawMessage `json:"balance_transaction"`
	Captured            *bool           `json:"captured"`
	Created             int64           `json:"created"`
	Currency            string          `json:"currency"`
	Customer            json.RawMessage `json:"customer"`
	Description         *string         `json:"description"`
	Dispute             json.RawMessage `json:"dispute"`
	FailureCode         *string         `json:"failure_code"`
	FailureMessage      *string         `json:"failure_message"`
	FraudDetails        json.RawMessage `json:"fraud_details"`
	Invoice             json.RawMessage `json:"invoice"`
	Livemode            bool            `json:"livemode"`
	Metadata            json.RawMessage `json:"metadata"`
	Order               json.RawMessage `json:"order"`
	Outcome             json.RawMessage `json:"outcome"`
	Paid                bool            `json:"paid"`
	ReceiptEmail        *string         `json:"receipt_email"`
	ReceiptNumber       *string         `json:"receipt_number"`
	Refunded            bool            `json:"refunded"`
	Shipping            json.RawMessage `json:"shipping"`
	Source              json.RawMessage `json:"source"`
	StatementDescriptor *string         `json:"statement_descriptor"`
	Status              string          `json:"status"`
}

func decodeCharge(data []byte) (models.StripeCharge, error) {
	var obj chargeObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return models.StripeCharge{}, err
	}
	if obj.ID == "" {
		return models.StripeCharge{}, errors.New("charge without id")
	}
	if obj.Object != "" && obj.Object != "charge" {
		return models.StripeCharge{}, fmt.Errorf("expected a charge, got %q", obj.Object)
	}
	return models.StripeCharge{
		StripeID:            obj.ID,
		Amount:              obj.Amount,
		AmountRefunded:      obj.AmountRefunded,
		BalanceTransaction:  expandableID(obj.BalanceTransaction),
		Captured:            obj.Captured,
		Created:             obj.Created,
		Currency:            obj.Currency,
		Customer:            expandableID(obj.Customer),
		Description:         obj.Description,
		Dispute:             expandableID(obj.Dispute),
		FailureCode:         obj.FailureCode,
		FailureMessage:      obj.FailureMessage,
		FraudDetails:        nonNull(obj.FraudDetails),
		Invoice:             expandableID(obj.Invoice),
		Livemode:            obj.Livemode,
		Metadata:            nonNull(obj.Metadata),
		OrderID:             expandableID(obj.Order),
		Outcome:             nonNull(obj.Outcome),
		Paid:                obj.Paid,
		ReceiptEmail:        obj.ReceiptEmail,
		ReceiptNumber:       obj.ReceiptNumber,
		Refunded:            obj.Refunded,
		Shipping:            nonNull(obj.Shipping),
		Source:              expandableID(obj.Source),
		StatementDescriptor: obj.StatementDescriptor,
		Status:              obj.Status,
	}, nil
}

// expandableID returns the id of a field that is either a string or an object with an id.
func expandableID(raw json.RawMessage) *string {
	raw = nonNull(raw)
	if raw == nil {
		return nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return &id
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.ID != "" {
		return &obj.ID
	}
	return nil
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

func decodeStripeError(status int, body []byte) error {
	var env struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	e := &StripeError{StatusCode: status}
	if json.Unmarshal(body, &env) == nil {
		e.Type = env.Error.Type
		e.Message = env.Error.Message
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}
