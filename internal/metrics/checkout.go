// Package metrics keeps in-process counters for the checkout pipeline.
package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Checkout counts order pipeline outcomes since the process started.
// The zero value is not usable; call NewCheckout.
type Checkout struct {
	OrdersPlaced        Counter
	PaymentsConfirmed   Counter
	PaymentsFailed      Counter
	NotificationsFailed Counter

	started time.Time
}

func NewCheckout() *Checkout {
	return &Checkout{started: time.Now()}
}

type Snapshot struct {
	OrdersPlaced        uint64 `json:"ordersPlaced"`
	PaymentsConfirmed   uint64 `json:"paymentsConfirmed"`
	PaymentsFailed      uint64 `json:"paymentsFailed"`
	NotificationsFailed uint64 `json:"notificationsFailed"`
	UptimeSeconds       int64  `json:"uptimeSeconds"`
}

func (c *Checkout) Snapshot() Snapshot {
	return Snapshot{
		OrdersPlaced:        c.OrdersPlaced.Load(),
		PaymentsConfirmed:   c.PaymentsConfirmed.Load(),
		PaymentsFailed:      c.PaymentsFailed.Load(),
		NotificationsFailed: c.NotificationsFailed.Load(),
		UptimeSeconds:       int64(time.Since(c.started).Seconds()),
	}
}
