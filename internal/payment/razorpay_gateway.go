package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"homefoods-be/internal/logger"

	"go.uber.org/zap"
)

const razorpayBaseURL = "https://api.razorpay.com"

// RazorpayGateway talks to the Razorpay Orders API.
type RazorpayGateway struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

// NewRazorpayGateway returns a gateway backed by the Razorpay Orders API.
func NewRazorpayGateway(keyID, keySecret, webhookSecret string) (*RazorpayGateway, error) {
	if keyID == "" || keySecret == "" {
		return nil, ErrMissingCredentials
	}
	return &RazorpayGateway{
		keyID:         keyID,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		baseURL:       razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (g *RazorpayGateway) Mode() Mode {
	return ModeRazorpay
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (g *RazorpayGateway) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("order_id", req.OrderID),
		zap.Float64("amount", req.Amount),
	)

	body := map[string]any{
		"amount":   ToPaise(req.Amount),
		"currency": CurrencyINR,
		"receipt":  req.OrderID,
		"notes": map[string]string{
			"order_id": req.OrderID,
			"name":     req.CustomerName,
			"phone":    req.CustomerPhone,
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal razorpay order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("build razorpay request: %w", err)
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	log.Info("creating razorpay order")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("razorpay request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("failed to read razorpay response", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("razorpay returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, fmt.Errorf("%w: razorpay status %d", ErrPaymentUnavailable, resp.StatusCode)
	}

	var created razorpayOrder
	if err := json.Unmarshal(bodyBytes, &created); err != nil || created.ID == "" {
		log.Error("failed decoding razorpay order", zap.Error(err))
		return nil, fmt.Errorf("%w: malformed razorpay response", ErrPaymentUnavailable)
	}

	log.Info("razorpay order created", zap.String("provider_order_id", created.ID))

	return &Intent{
		Provider:        ModeRazorpay,
		ProviderOrderID: created.ID,
		Amount:          created.Amount,
		Currency:        created.Currency,
		KeyID:           g.keyID,
		Receipt:         req.OrderID,
	}, nil
}

// Verify checks the checkout signature: HMAC-SHA256("<order_id>|<payment_id>", key secret).
func (g *RazorpayGateway) Verify(_ context.Context, providerOrderID string, s Success) error {
	if s.OrderID != providerOrderID || s.PaymentID == "" {
		return ErrInvalidSignature
	}
	if !validHMAC(g.keySecret, providerOrderID+"|"+s.PaymentID, s.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

// VerifyWebhook checks X-Razorpay-Signature against the raw request body.
func (g *RazorpayGateway) VerifyWebhook(body []byte, signature string) error {
	if g.webhookSecret == "" {
		return fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}
	if !validHMAC(g.webhookSecret, string(body), signature) {
		return ErrInvalidSignature
	}
	return nil
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func validHMAC(secret, payload, signature string) bool {
	expected := sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
