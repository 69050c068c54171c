package webhook

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"homefoods-be/internal/logger"
	"homefoods-be/internal/order"
	"homefoods-be/internal/payment"

	"go.uber.org/zap"
)

const (
	SignatureHeader = "X-Razorpay-Signature"

	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"

	maxBodyBytes = 1 << 20
)

// Payload is the subset of a Razorpay webhook we read.
type Payload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	Amount           int64  `json:"amount"`
	ErrorDescription string `json:"error_description"`
}

// Verifier is satisfied by *payment.RazorpayGateway.
type Verifier interface {
	VerifyWebhook(body []byte, signature string) error
}

type Handler struct {
	OrderSvc order.Service
	Verifier Verifier
}

func NewWebhookHandler(orderSvc order.Service, verifier Verifier) *Handler {
	return &Handler{
		OrderSvc: orderSvc,
		Verifier: verifier,
	}
}

// PaymentWebhookHandler applies captured and failed payment events to orders.
// Razorpay retries on any non-2xx answer, so only transient errors return one.
func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(zap.String("layer", "webhook"), zap.String("provider", "razorpay"))

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Verifier.VerifyWebhook(body, r.Header.Get(SignatureHeader)); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("invalid webhook payload", zap.Error(err))
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	entity := payload.Payload.Payment.Entity
	log = log.With(
		zap.String("event", payload.Event),
		zap.String("provider_order_id", entity.OrderID),
		zap.String("payment_id", entity.ID),
	)

	var res payment.Result
	switch payload.Event {
	case EventPaymentCaptured, EventOrderPaid:
		res = payment.Succeeded(payment.Success{PaymentID: entity.ID, OrderID: entity.OrderID})
	case EventPaymentFailed:
		res = payment.Failed(entity.ErrorDescription)
	default:
		log.Debug("webhook event ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	_, err = h.OrderSvc.ApplyProviderEvent(ctx, entity.OrderID, res)
	switch {
	case err == nil:
		log.Info("webhook applied")
	case errors.Is(err, order.ErrOrderNotFound):
		log.Warn("webhook for unknown order")
	case errors.Is(err, order.ErrPaymentFailed):
		log.Info("payment failure recorded")
	default:
		log.Error("failed to apply webhook", zap.Error(err))
		http.Error(w, "failed to update order", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
