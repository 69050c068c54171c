package httpapi

import (
	"errors"
	"net/http"

	"homefoods-be/internal/auth"
	"homefoods-be/internal/cart"
	"homefoods-be/internal/chat"
	"homefoods-be/internal/customer"
	"homefoods-be/internal/i18n"
	"homefoods-be/internal/logger"
	"homefoods-be/internal/order"
	"homefoods-be/internal/payment"
	"homefoods-be/internal/product"
	"homefoods-be/internal/review"
	"homefoods-be/internal/store"
	"homefoods-be/internal/transport"
	"homefoods-be/internal/validation"

	"go.uber.org/zap"
)

// writeError maps a service error to a status code and a translated message.
// Anything unrecognised is logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.FromCtx(r.Context())
	fail := func(status int, key i18n.Key, fields map[string]string) {
		transport.WriteError(w, status, i18n.T(lang, key), fields)
	}

	var fieldErrs validation.FieldErrors
	var payErr *order.PaymentFailedError
	var storeErr *store.ValidationError

	switch {
	case errors.As(err, &fieldErrs):
		translated := make(map[string]string, len(fieldErrs))
		for f, msg := range fieldErrs {
			translated[f] = i18n.Field(lang, msg)
		}
		fail(http.StatusBadRequest, i18n.ValidationFailed, translated)

	case errors.As(err, &payErr):
		fail(http.StatusPaymentRequired, i18n.PaymentFailed, map[string]string{"reason": payErr.Reason})

	case errors.Is(err, order.ErrEmptyCart):
		fail(http.StatusBadRequest, i18n.EmptyCart, nil)
	case errors.Is(err, order.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidQuantity):
		fail(http.StatusBadRequest, i18n.InvalidQuantity, nil)
	case errors.Is(err, order.ErrInvalidPrice), errors.Is(err, cart.ErrInvalidPrice):
		fail(http.StatusBadRequest, i18n.InvalidPrice, nil)
	case errors.Is(err, order.ErrInvalidWeight):
		fail(http.StatusBadRequest, i18n.InvalidWeight, nil)
	case errors.Is(err, order.ErrInvalidStatus):
		fail(http.StatusConflict, i18n.InvalidStatus, nil)
	case errors.Is(err, order.ErrOrderNotPending):
		fail(http.StatusConflict, i18n.OrderNotPending, nil)
	case errors.Is(err, order.ErrPaymentVerification):
		fail(http.StatusBadRequest, i18n.PaymentVerification, nil)
	case errors.Is(err, order.ErrSimulationDisabled):
		fail(http.StatusForbidden, i18n.SimulationDisabled, nil)

	case errors.Is(err, cart.ErrInvalidItem), errors.Is(err, cart.ErrTooManyItems),
		errors.Is(err, product.ErrInvalidProduct), errors.Is(err, product.ErrInvalidCategory),
		errors.Is(err, chat.ErrInvalidMessages):
		fail(http.StatusBadRequest, i18n.InvalidRequest, map[string]string{"request": err.Error()})
	case errors.As(err, &storeErr):
		transport.WriteError(w, http.StatusBadRequest, storeErr.Error(), nil)

	case errors.Is(err, order.ErrOrderNotFound):
		fail(http.StatusNotFound, i18n.OrderNotFound, nil)
	case errors.Is(err, review.ErrReviewNotFound):
		fail(http.StatusNotFound, i18n.ReviewNotFound, nil)
	case errors.Is(err, product.ErrProductNotFound):
		fail(http.StatusNotFound, i18n.ProductNotFound, nil)
	case errors.Is(err, customer.ErrCustomerNotFound):
		fail(http.StatusNotFound, i18n.CustomerNotFound, nil)
	case errors.Is(err, store.ErrNotFound):
		fail(http.StatusNotFound, i18n.NotFound, nil)

	case errors.Is(err, customer.ErrPhoneTaken):
		fail(http.StatusConflict, i18n.PhoneTaken, nil)
	case errors.Is(err, auth.ErrUnauthorized):
		fail(http.StatusUnauthorized, i18n.Unauthorized, nil)

	case errors.Is(err, chat.ErrNotConfigured), errors.Is(err, chat.ErrUpstream):
		logger.FromCtx(r.Context()).Warn("chat unavailable", zap.Error(err))
		fail(http.StatusServiceUnavailable, i18n.ChatUnavailable, nil)
	case errors.Is(err, payment.ErrPaymentUnavailable):
		logger.FromCtx(r.Context()).Warn("payment provider unavailable", zap.Error(err))
		fail(http.StatusBadGateway, i18n.Unavailable, nil)

	default:
		logger.FromCtx(r.Context()).Error("unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		fail(http.StatusInternalServerError, i18n.Internal, nil)
	}
}

// decode reads the JSON body into dst and answers 400 or 413 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := transport.DecodeJSON(r, dst)
	if err == nil {
		return true
	}

	status := http.StatusBadRequest
	if errors.Is(err, transport.ErrBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	transport.WriteError(w, status, i18n.T(i18n.FromCtx(r.Context()), i18n.InvalidRequest), nil)
	return false
}
