package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"homefoods-be/internal/config"
	"homefoods-be/internal/logger"

	"go.uber.org/zap"
)

const whatsappBaseURL = "https://graph.facebook.com/v19.0"

// WhatsAppChannel sends text messages through the WhatsApp Cloud API.
type WhatsAppChannel struct {
	token         string
	phoneNumberID string
	recipient     string
	baseURL       string
	httpClient    *http.Client
}

func NewWhatsAppChannel(token, phoneNumberID, recipient string) *WhatsAppChannel {
	return &WhatsAppChannel{
		token:         token,
		phoneNumberID: phoneNumberID,
		recipient:     recipient,
		baseURL:       whatsappBaseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *WhatsAppChannel) Name() string { return "whatsapp" }

func (c *WhatsAppChannel) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]any{
		"messaging_product": "whatsapp",
		"to":                c.recipient,
		"type":              "text",
		"text":              map[string]any{"body": message, "preview_url": false},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		logger.FromCtx(ctx).Warn("whatsapp api rejected message",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", raw),
		)
		return fmt.Errorf("whatsapp status %d", resp.StatusCode)
	}
	return nil
}

// LogChannel writes the message to the application log. It is used when no
// WhatsApp credentials are configured.
type LogChannel struct{}

func (LogChannel) Name() string { return "log" }

func (LogChannel) Send(ctx context.Context, message string) error {
	logger.FromCtx(ctx).Info("order notification", zap.String("message", message))
	return nil
}

// NewChannel picks WhatsApp when its credentials are complete and falls back
// to LogChannel otherwise.
func NewChannel(cfg *config.Config) Channel {
	if cfg.WhatsAppToken == "" || cfg.WhatsAppPhoneNumberID == "" || cfg.WhatsAppRecipient == "" {
		logger.L().Warn("whatsapp credentials incomplete, order notifications go to the log")
		return LogChannel{}
	}
	return NewWhatsAppChannel(cfg.WhatsAppToken, cfg.WhatsAppPhoneNumberID, cfg.WhatsAppRecipient)
}
