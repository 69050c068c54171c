// Package chat proxies storefront questions to an OpenAI-compatible chat
// completions API.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"homefoods-be/internal/logger"

	"go.uber.org/zap"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	maxMessages      = 20
	maxContentLength = 2000
	maxReplyTokens   = 400
)

const systemPrompt = `You are the shop assistant for a small homemade foods business that sells sweets, snacks and pickles made in a home kitchen.
Answer questions about products, ingredients, shelf life, storage, ordering and delivery.
Delivery is free for orders of ₹1000 or more; otherwise it costs ₹60 per kg, rounded up to the next kg.
Reply in the language the customer writes in (English or Hindi). Keep answers short and friendly.
If you do not know something, ask the customer to contact the shop on WhatsApp.`

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	URL    string
	APIKey string
	Model  string
}

// Client sends conversations to the completions endpoint.
type Client struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Reply prepends the shop prompt to the conversation and returns the
// assistant's answer. Client-sent system messages are dropped.
func (c *Client) Reply(ctx context.Context, conversation []Message) (string, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "chat"))

	if c.apiKey == "" || c.url == "" {
		return "", ErrNotConfigured
	}
	msgs, err := prepare(conversation)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   maxReplyTokens,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("chat request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		log.Error("failed to read chat response", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Error("chat service returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", raw),
		)
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil || len(out.Choices) == 0 {
		log.Error("malformed chat response", zap.Error(err))
		return "", fmt.Errorf("%w: malformed response", ErrUpstream)
	}

	reply := strings.TrimSpace(out.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUpstream)
	}
	log.Info("chat reply sent", zap.Int("turns", len(msgs)-1))
	return reply, nil
}

// prepare keeps the latest user/assistant turns and puts the shop prompt first.
func prepare(conversation []Message) ([]Message, error) {
	kept := make([]Message, 0, len(conversation))
	hasUser := false
	for _, m := range conversation {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		content := strings.TrimSpace(m.Content)
		if content == "" || (role != RoleUser && role != RoleAssistant) {
			continue
		}
		if r := []rune(content); len(r) > maxContentLength {
			content = string(r[:maxContentLength])
		}
		if role == RoleUser {
			hasUser = true
		}
		kept = append(kept, Message{Role: role, Content: content})
	}
	if !hasUser {
		return nil, ErrInvalidMessages
	}
	if len(kept) > maxMessages {
		kept = kept[len(kept)-maxMessages:]
	}

	return append([]Message{{Role: RoleSystem, Content: systemPrompt}}, kept...), nil
}
