package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"homefoods-be/internal/logger"
	"homefoods-be/internal/metrics"
	"homefoods-be/internal/notify"
	"homefoods-be/internal/payment"
	"homefoods-be/internal/pricing"
	"homefoods-be/internal/validation"

	"go.uber.org/zap"
)

type Service interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	StartPayment(ctx context.Context, id string) (*payment.Intent, error)
	ConfirmPayment(ctx context.Context, id string, res payment.Result) (*Confirmation, error)
	ApplyProviderEvent(ctx context.Context, providerOrderID string, res payment.Result) (*Confirmation, error)
	SimulatePayment(ctx context.Context, id string) (payment.Result, error)
	UpdateStatus(ctx context.Context, id string, next Status) (*Order, error)
}

// Notifier is satisfied by *notify.Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, s notify.Summary) notify.Result
}

// PriceLookup returns the catalog price of a product's weight variant and
// the product's display name. A missing product keeps the submitted values.
type PriceLookup interface {
	VariantPrice(ctx context.Context, productID, weight string) (float64, bool, error)
	ProductName(ctx context.Context, productID string) (string, bool, error)
}

type PlaceOrderInput struct {
	Customer   validation.CustomerInput `json:"customerDetails"`
	Items      []ItemInput              `json:"items"`
	CustomerID string                   `json:"-"`
}

// Confirmation is the outcome of a payment callback. Notification is nil
// when the order had already been confirmed.
type Confirmation struct {
	Order        *Order         `json:"order"`
	Notification *notify.Result `json:"notification,omitempty"`
}

type simulator interface {
	Simulate(intent *payment.Intent) payment.Result
}

type ServiceDeps struct {
	Orders     Repository
	Gateway    payment.Gateway
	Notifier   Notifier
	Calculator pricing.Calculator
	Prices     PriceLookup
	// Metrics is optional; a private set of counters is used when nil.
	Metrics     *metrics.Checkout
	Clock       func() time.Time
	IDGenerator func() string
}

type service struct {
	orders   Repository
	gateway  payment.Gateway
	notifier Notifier
	calc     pricing.Calculator
	prices   PriceLookup
	metrics  *metrics.Checkout
	clock    func() time.Time
	newID    func() string
}

func NewService(deps ServiceDeps) (Service, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: repository is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("order service: payment gateway is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("order service: notifier is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.IDGenerator
	if newID == nil {
		newID = NewID
	}
	calc := deps.Calculator
	if calc.FreeDeliveryThreshold <= 0 || calc.RatePerKg <= 0 {
		calc = pricing.NewCalculator(calc.FreeDeliveryThreshold, calc.RatePerKg)
	}
	counters := deps.Metrics
	if counters == nil {
		counters = metrics.NewCheckout()
	}

	return &service{
		orders:   deps.Orders,
		gateway:  deps.Gateway,
		notifier: deps.Notifier,
		calc:     calc,
		prices:   deps.Prices,
		metrics:  counters,
		clock:    clock,
		newID:    newID,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Int("item_count", len(in.Items)),
	)

	customer, fieldErrs := validation.ValidateCustomer(in.Customer)
	if len(fieldErrs) > 0 {
		log.Info("customer details rejected", zap.Strings("fields", fieldNames(fieldErrs)))
		return nil, fieldErrs
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items, err := s.applyCatalogPrices(ctx, in.Items)
	if err != nil {
		log.Error("failed to look up catalog prices", zap.Error(err))
		return nil, err
	}

	lines, err := Lines(items)
	if err != nil {
		return nil, err
	}
	totals := s.calc.Calculate(lines)

	o, err := Build(customer, items, totals, s.clock(), s.newID)
	if err != nil {
		log.Info("order rejected", zap.Error(err))
		return nil, err
	}
	o.CustomerID = in.CustomerID

	log = log.With(zap.String("order_id", o.ID))
	log.Info("price calculated",
		zap.Float64("subtotal", o.Subtotal),
		zap.Float64("delivery_charge", o.DeliveryCharge),
		zap.Float64("grand_total", o.GrandTotal),
		zap.Float64("weight_kg", o.TotalWeightKg),
	)

	if err := s.orders.Create(ctx, o); err != nil {
		log.Error("failed to persist order", zap.Error(err))
		return nil, err
	}

	s.metrics.OrdersPlaced.Inc()
	log.Info("order placed")
	return o, nil
}

func (s *service) applyCatalogPrices(ctx context.Context, items []ItemInput) ([]ItemInput, error) {
	out := make([]ItemInput, len(items))
	copy(out, items)
	if s.prices == nil {
		return out, nil
	}

	for i, it := range out {
		price, found, err := s.prices.VariantPrice(ctx, it.ProductID, it.Weight)
		if err != nil {
			return nil, err
		}
		if found && price != it.UnitPrice {
			logger.FromCtx(ctx).Warn("submitted price differs from catalog",
				zap.String("product_id", it.ProductID),
				zap.String("weight", it.Weight),
				zap.Float64("submitted", it.UnitPrice),
				zap.Float64("catalog", price),
			)
			out[i].UnitPrice = price
		}

		if strings.TrimSpace(it.Name) == "" {
			name, found, err := s.prices.ProductName(ctx, it.ProductID)
			if err != nil {
				return nil, err
			}
			if found {
				out[i].Name = name
			}
		}
	}
	return out, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, filter.Status)
	}
	return s.orders.List(ctx, filter)
}

func (s *service) StartPayment(ctx context.Context, id string) (*payment.Intent, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "StartPayment"),
		zap.String("order_id", id),
	)

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, ErrOrderNotPending
	}

	intent, err := s.gateway.CreateIntent(ctx, payment.IntentRequest{
		OrderID:       o.ID,
		Amount:        o.GrandTotal,
		CustomerName:  o.Customer.Name,
		CustomerPhone: o.Customer.Phone,
		CustomerEmail: o.Customer.Email,
	})
	if err != nil {
		log.Error("failed to create payment intent", zap.Error(err))
		return nil, err
	}

	if err := s.orders.SetPaymentRef(ctx, o.ID, intent.ProviderOrderID); err != nil {
		log.Error("failed to store payment reference", zap.Error(err))
		return nil, err
	}

	log.Info("payment intent created",
		zap.String("provider", string(intent.Provider)),
		zap.String("provider_order_id", intent.ProviderOrderID),
	)
	return intent, nil
}

func (s *service) ConfirmPayment(ctx context.Context, id string, res payment.Result) (*Confirmation, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, o, res, true)
}

// ApplyProviderEvent handles results delivered by a signed provider webhook,
// so the checkout signature is not checked again.
func (s *service) ApplyProviderEvent(ctx context.Context, providerOrderID string, res payment.Result) (*Confirmation, error) {
	o, err := s.orders.GetByPaymentRef(ctx, providerOrderID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, o, res, false)
}

func (s *service) apply(ctx context.Context, o *Order, res payment.Result, verify bool) (*Confirmation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ConfirmPayment"),
		zap.String("order_id", o.ID),
	)

	if o.Status != StatusPending {
		log.Info("payment result for settled order ignored", zap.String("status", string(o.Status)))
		return &Confirmation{Order: o}, nil
	}

	if failure, ok := res.Failure(); ok {
		log.Warn("payment failed", zap.String("reason", failure.Reason))
		s.metrics.PaymentsFailed.Inc()
		if err := s.orders.RecordPaymentError(ctx, o.ID, failure.Reason); err != nil {
			log.Error("failed to record payment error", zap.Error(err))
		}
		return nil, &PaymentFailedError{Reason: failure.Reason}
	}

	success, _ := res.Success()
	if verify {
		if o.PaymentRef == "" {
			log.Warn("payment confirmation without an intent")
			return nil, fmt.Errorf("%w: payment was never started", ErrPaymentVerification)
		}
		if err := s.gateway.Verify(ctx, o.PaymentRef, success); err != nil {
			log.Warn("payment verification failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrPaymentVerification, err)
		}
	}

	updated, err := s.orders.Confirm(ctx, o.ID, success.PaymentID)
	if err != nil {
		log.Error("failed to confirm order", zap.Error(err))
		return nil, err
	}

	current, err := s.orders.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !updated {
		log.Info("order confirmed concurrently")
		return &Confirmation{Order: current}, nil
	}
	log.Info("order confirmed", zap.String("payment_id", success.PaymentID))
	s.metrics.PaymentsConfirmed.Inc()

	result := s.notifier.Notify(ctx, current.summary())
	if !result.Delivered {
		s.metrics.NotificationsFailed.Inc()
	} else if err := s.orders.MarkNotified(ctx, current.ID); err != nil {
		log.Warn("failed to flag order as notified", zap.Error(err))
	} else {
		current.Notified = true
	}
	return &Confirmation{Order: current, Notification: &result}, nil
}

func (s *service) SimulatePayment(ctx context.Context, id string) (payment.Result, error) {
	sim, ok := s.gateway.(simulator)
	if !ok {
		return payment.Result{}, ErrSimulationDisabled
	}

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return payment.Result{}, err
	}
	if o.Status != StatusPending {
		return payment.Result{}, ErrOrderNotPending
	}

	intent, err := s.StartPayment(ctx, id)
	if err != nil {
		return payment.Result{}, err
	}
	return sim.Simulate(intent), nil
}

// UpdateStatus moves an order forward; confirmation only happens through payment.
func (s *service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", id),
		zap.String("next", string(next)),
	)

	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, next)
	}

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == next {
		return o, nil
	}
	if o.Status != StatusConfirmed || next != StatusCompleted {
		log.Warn("status transition rejected", zap.String("current", string(o.Status)))
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, o.Status, next)
	}

	ok, err := s.orders.SetStatus(ctx, id, o.Status, next)
	if err != nil {
		log.Error("failed to update status", zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order changed concurrently", ErrInvalidStatus)
	}

	log.Info("order status updated")
	return s.orders.Get(ctx, id)
}

func fieldNames(fe validation.FieldErrors) []string {
	names := make([]string, 0, len(fe))
	for f := range fe {
		names = append(names, f)
	}
	return names
}
