package payment

import (
	"time"

	"github.com/zerowaste/payment-service/internal/domain"
)

// Routing keys of the payments exchange.
const (
	RoutingKeyRequest = "payment.request"
	RoutingKeyResult  = "payment.result"
	RoutingKeyStatus  = "payment.status"

	// RoutingKeyNotification routes user push notifications.
	RoutingKeyNotification = "notification"
)

// Event actions.
const (
	ActionCreated   = "PAYMENT_CREATED"
	ActionUpdated   = "PAYMENT_UPDATED"
	ActionCancelled = "PAYMENT_CANCELLED"
	ActionRefunded  = "PAYMENT_REFUNDED"
)

// Event is the message published on the payments exchange.
type Event struct {
	Action     string        `json:"action"`
	PaymentID  string        `json:"paymentId"`
	OrderID    string        `json:"orderId"`
	UserID     string        `json:"userId"`
	Status     domain.Status `json:"status,omitempty"`
	Amount     float64       `json:"amount"`
	PaymentURL string        `json:"paymentUrl,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

func newEvent(action string, p *domain.Payment, now time.Time) Event {
	return Event{
		Action:    action,
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		UserID:    p.UserID,
		Status:    p.Status,
		Amount:    p.Amount,
		Timestamp: now,
	}
}

// PushNotification is the message published on the notifications exchange.
type PushNotification struct {
	To           string            `json:"to"`
	Notification PushContent       `json:"notification"`
	Data         map[string]string `json:"data"`
	Timestamp    time.Time         `json:"timestamp"`
}

// PushContent is the visible part of a push notification.
type PushContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
