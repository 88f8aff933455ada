// Package domain contains the core business entities and interfaces for the payment service.
package domain

import "context"

// PaymentRepository defines how payments are persisted.
// This is a "port" in hexagonal architecture - the domain defines what it needs,
// and infrastructure provides the implementation.
type PaymentRepository interface {
	// Create stores a new payment, assigning its ID when empty.
	// Returns ErrDuplicateOrder when the orderId is already used.
	Create(ctx context.Context, payment *Payment) error

	// Update replaces a stored payment. Last writer wins.
	Update(ctx context.Context, payment *Payment) error

	// FindByID returns ErrPaymentNotFound when no payment has the id.
	FindByID(ctx context.Context, id string) (*Payment, error)

	// FindByOrderID returns ErrPaymentNotFound when no payment has the orderId.
	FindByOrderID(ctx context.Context, orderID string) (*Payment, error)

	// Find lists matching payments sorted by createdAt descending.
	Find(ctx context.Context, filter PaymentFilter, page PageRequest) ([]Payment, error)

	// Count returns how many payments match the filter.
	Count(ctx context.Context, filter PaymentFilter) (int64, error)

	// CountByStatus aggregates all payments of a user per status, ignoring any other filter.
	CountByStatus(ctx context.Context, userID string) (map[Status]int64, error)
}

// PaymentGateway defines the interface for interacting with the payment provider.
// Both the simulator and Mercado Pago satisfy it.
type PaymentGateway interface {
	// CreatePaymentIntent opens a checkout and returns the URL the payer must visit.
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error)

	// GetPaymentStatus fetches the current status of a gateway payment.
	GetPaymentStatus(ctx context.Context, paymentID string) (*PaymentResult, error)

	// ProcessNotification resolves a webhook into a result.
	// Returns nil, nil when the notification is not about a payment.
	ProcessNotification(ctx context.Context, notification WebhookNotification) (*PaymentResult, error)

	// CancelPayment cancels a payment at the gateway.
	CancelPayment(ctx context.Context, paymentID string) error

	// RefundPayment refunds a payment at the gateway.
	RefundPayment(ctx context.Context, paymentID string) error
}

// PaymentSimulator is implemented by gateways that can force an outcome.
type PaymentSimulator interface {
	ApprovePayment(ctx context.Context, orderID string) (*PaymentResult, error)
	RejectPayment(ctx context.Context, orderID string) (*PaymentResult, error)
}

// EventPublisher publishes JSON messages to a named exchange or topic.
type EventPublisher interface {
	Publish(ctx context.Context, exchange, routingKey string, message any) error
}

// TokenResolver looks up a user's push token. An empty token means none is registered.
type TokenResolver interface {
	GetUserFCMToken(ctx context.Context, userID string) (string, error)
}

// MonolithNotifier reports final payment statuses back to the order system.
type MonolithNotifier interface {
	NotifyPaymentStatusUpdate(ctx context.Context, orderID string, status Status, paymentID string) error
}

// UserNotifier pushes payment status notifications to users.
type UserNotifier interface {
	// NotifyPaymentStatus resolves the user's token and sends the notification.
	// Returns false when nothing was sent.
	NotifyPaymentStatus(ctx context.Context, payment *Payment) (bool, error)

	// NotifyDevice sends the notification to an explicit token.
	NotifyDevice(ctx context.Context, token string, payment *Payment) error
}
