// Package domain contains the core business entities and interfaces for the payment service.
// This is the innermost layer of the Clean Architecture - it has no dependencies on
// external frameworks or infrastructure.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// Statuses lists every valid payment status in display order.
var Statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusCancelled,
	StatusRefunded,
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range Statuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// Item is a single line of a payment.
type Item struct {
	Title       string  `json:"title" bson:"title"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Quantity    int     `json:"quantity" bson:"quantity"`
	UnitPrice   float64 `json:"unitPrice" bson:"unitPrice"`
}

// Total returns quantity × unitPrice for the line.
func (i Item) Total() decimal.Decimal {
	return decimal.NewFromFloat(i.UnitPrice).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Payer identifies who pays. It is forwarded to the gateway and never stored.
type Payer struct {
	Name           string          `json:"name,omitempty"`
	Email          string          `json:"email,omitempty"`
	Identification *Identification `json:"identification,omitempty"`
}

// Identification is the payer's document.
type Identification struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number,omitempty"`
}

// Payment is the only persisted entity of the service.
type Payment struct {
	ID            string         `json:"_id" bson:"_id"`
	OrderID       string         `json:"orderId" bson:"orderId"`
	UserID        string         `json:"userId" bson:"userId"`
	Amount        float64        `json:"amount" bson:"amount"`
	Currency      string         `json:"currency" bson:"currency"`
	Items         []Item         `json:"items" bson:"items"`
	Status        Status         `json:"status" bson:"status"`
	PaymentMethod string         `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaymentID     string         `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	PaymentURL    string         `json:"paymentUrl,omitempty" bson:"paymentUrl,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// ComputeAmount sums quantity × unitPrice over the items.
func ComputeAmount(items []Item) float64 {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return total.InexactFloat64()
}

// NewPayment builds a pending payment. The amount is always derived from the items.
func NewPayment(orderID, userID, currency string, items []Item, now time.Time) (*Payment, error) {
	if userID == "" {
		return nil, NewPaymentError(ErrInvalidPayment, "userId is required", "VALIDATION_ERROR")
	}
	if len(items) == 0 {
		return nil, NewPaymentError(ErrInvalidPayment, "at least one item is required", "VALIDATION_ERROR")
	}
	for i, item := range items {
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return nil, NewPaymentError(ErrInvalidPayment,
				fmt.Sprintf("item %d: quantity and unitPrice must not be negative", i),
				"VALIDATION_ERROR")
		}
	}

	lines := make([]Item, len(items))
	copy(lines, items)

	return &Payment{
		OrderID:   orderID,
		UserID:    userID,
		Amount:    ComputeAmount(lines),
		Currency:  currency,
		Items:     lines,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// LastModified is the timestamp used for conditional requests.
func (p *Payment) LastModified() time.Time {
	if p.UpdatedAt.IsZero() {
		return p.CreatedAt
	}
	return p.UpdatedAt
}

// Cancel moves a pending payment to cancelled.
func (p *Payment) Cancel(now time.Time) error {
	if p.Status != StatusPending {
		return NewPaymentError(ErrInvalidTransition,
			fmt.Sprintf("cannot cancel a payment with status '%s'", p.Status),
			"INVALID_TRANSITION")
	}
	p.Status = StatusCancelled
	p.UpdatedAt = now
	return nil
}

// Refund moves an approved payment to refunded.
func (p *Payment) Refund(now time.Time) error {
	if p.Status != StatusApproved {
		return NewPaymentError(ErrInvalidTransition,
			fmt.Sprintf("cannot refund a payment with status '%s'", p.Status),
			"INVALID_TRANSITION")
	}
	p.Status = StatusRefunded
	p.UpdatedAt = now
	return nil
}

// ApplyResult records a status reported by the gateway or the simulator.
// No precondition is checked: gateway reports and simulations always win.
func (p *Payment) ApplyResult(result PaymentResult, now time.Time) {
	p.Status = result.Status
	if result.PaymentID != "" {
		p.PaymentID = result.PaymentID
	}
	if result.PaymentMethod != "" {
		p.PaymentMethod = result.PaymentMethod
	}
	p.UpdatedAt = now
}

// IntentRequest is what the gateway needs to open a checkout for a payment.
type IntentRequest struct {
	OrderID     string
	UserID      string
	Items       []Item
	Currency    string
	Payer       Payer
	CallbackURL string
}

// PaymentIntent is the gateway's answer to an IntentRequest.
type PaymentIntent struct {
	ID                string    `json:"id"`
	InitPoint         string    `json:"init_point"`
	ExternalReference string    `json:"external_reference"`
	TotalAmount       float64   `json:"total_amount"`
	CreatedAt         time.Time `json:"created_at"`
}

// PaymentResult is a status reported by the gateway for one payment attempt.
type PaymentResult struct {
	PaymentID     string `json:"paymentId"`
	Status        Status `json:"status"`
	PaymentMethod string `json:"paymentMethod"`
	OrderID       string `json:"orderId,omitempty"`
	UserID        string `json:"userId,omitempty"`
}

// WebhookNotification is the payload posted by the gateway or the simulator.
type WebhookNotification struct {
	ID       any              `json:"id,omitempty"`
	Type     string           `json:"type"`
	Action   string           `json:"action,omitempty"`
	LiveMode bool             `json:"live_mode,omitempty"`
	Data     NotificationData `json:"data"`
}

// NotificationData references the resource the notification is about.
type NotificationData struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId,omitempty"`
	UserID  string `json:"userId,omitempty"`
}

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	UserID      string
	Status      Status
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PageRequest selects a window of a listing sorted by createdAt descending.
type PageRequest struct {
	Offset int
	Limit  int
}
