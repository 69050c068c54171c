// Package notify renders confirmed orders into the shop owner's message
// format and forwards them to a messaging channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"homefoods-be/internal/logger"

	"go.uber.org/zap"
)

const dateLayout = "02/01/2006, 3:04:05 pm"

var ErrDispatch = errors.New("notification dispatch failed")

var kolkata = loadKolkata()

func loadKolkata() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

type Customer struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type Item struct {
	Name      string
	Weight    string
	Quantity  int
	LineTotal float64
}

// Summary is the order data the message template needs.
type Summary struct {
	OrderID   string
	CreatedAt time.Time
	Customer  Customer
	Items     []Item
	Subtotal  float64
	Delivery  float64
	Total     float64
}

// Result reports a dispatch attempt. Err is set when the channel failed;
// the rendered message is returned either way.
type Result struct {
	Delivered bool   `json:"delivered"`
	Channel   string `json:"channel"`
	Message   string `json:"renderedMessage"`
	ShareLink string `json:"shareLink,omitempty"`
	Err       error  `json:"-"`
}

type Channel interface {
	Name() string
	Send(ctx context.Context, message string) error
}

type Dispatcher struct {
	channel Channel
	shareTo string
}

// NewDispatcher sends through ch. shareTo is the shop's number used for the
// wa.me link; it may be empty.
func NewDispatcher(ch Channel, shareTo string) *Dispatcher {
	return &Dispatcher{channel: ch, shareTo: shareTo}
}

// Notify never returns an error: failures are logged and carried in Result.Err.
func (d *Dispatcher) Notify(ctx context.Context, s Summary) Result {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notify"),
		zap.String("order_id", s.OrderID),
		zap.String("channel", d.channel.Name()),
	)

	msg := Format(s)
	res := Result{Channel: d.channel.Name(), Message: msg}
	if d.shareTo != "" {
		res.ShareLink = ShareLink(d.shareTo, msg)
	}

	if err := d.channel.Send(ctx, msg); err != nil {
		log.Warn("order notification not delivered", zap.Error(err))
		res.Err = fmt.Errorf("%w: %v", ErrDispatch, err)
		return res
	}

	log.Info("order notification delivered")
	res.Delivered = true
	return res
}

// Format renders the fixed order message.
func Format(s Summary) string {
	var b strings.Builder

	b.WriteString("New Order Received!\n")
	fmt.Fprintf(&b, "Order ID: %s\n", s.OrderID)
	fmt.Fprintf(&b, "Date: %s\n", s.CreatedAt.In(kolkata).Format(dateLayout))
	b.WriteString("\n")

	b.WriteString("Customer Details:\n")
	fmt.Fprintf(&b, "Name: %s\n", s.Customer.Name)
	fmt.Fprintf(&b, "Phone: %s\n", s.Customer.Phone)
	email := s.Customer.Email
	if email == "" {
		email = "N/A"
	}
	fmt.Fprintf(&b, "Email: %s\n", email)
	fmt.Fprintf(&b, "Address: %s\n", s.Customer.Address)
	b.WriteString("\n")

	b.WriteString("Order Items:\n")
	for _, it := range s.Items {
		fmt.Fprintf(&b, "%s (%s) x%d - ₹%s\n", it.Name, it.Weight, it.Quantity, Amount(it.LineTotal))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Subtotal: ₹%s\n", Amount(s.Subtotal))
	fmt.Fprintf(&b, "Delivery: ₹%s\n", Amount(s.Delivery))
	fmt.Fprintf(&b, "Total: ₹%s", Amount(s.Total))

	return b.String()
}

// Amount prints whole rupees without decimals and anything else with two.
func Amount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// ShareLink builds a wa.me link that opens WhatsApp with message prefilled.
func ShareLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) == 10 {
		digits = "91" + digits
	}
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}
