// Package simulator implements the payment gateway port without an external provider.
// Checkouts point at the built-in simulation page.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
)

// CheckoutPath is where the simulation page is served.
const CheckoutPath = "/api/payment-simulation"

const paymentMethod = "credit_card"

var webhookOutcomes = []domain.Status{domain.StatusApproved, domain.StatusPending, domain.StatusRejected}

// Gateway simulates a payment provider.
type Gateway struct {
	baseURL string
	logger  *zap.Logger

	// pick chooses the outcome reported for webhooks.
	pick func() domain.Status
	now  func() time.Time
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithOutcome fixes the status reported for webhooks.
func WithOutcome(status domain.Status) Option {
	return func(g *Gateway) {
		g.pick = func() domain.Status { return status }
	}
}

// NewGateway creates a simulator. baseURL prefixes checkout URLs and may be empty.
func NewGateway(baseURL string, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: baseURL,
		logger:  logger.With(zap.String("component", "payment_simulator")),
		pick: func() domain.Status {
			return webhookOutcomes[rand.Intn(len(webhookOutcomes))]
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreatePaymentIntent returns a checkout on the simulation page.
func (g *Gateway) CreatePaymentIntent(_ context.Context, req domain.IntentRequest) (*domain.PaymentIntent, error) {
	id := uuid.NewString()
	total := domain.ComputeAmount(req.Items)

	query := url.Values{}
	query.Set("orderId", req.OrderID)
	query.Set("amount", fmt.Sprintf("%.2f", total))

	g.logger.Info("simulated checkout created", zap.String("order_id", req.OrderID))

	return &domain.PaymentIntent{
		ID:                id,
		InitPoint:         fmt.Sprintf("%s%s/%s?%s", g.baseURL, CheckoutPath, id, query.Encode()),
		ExternalReference: req.OrderID,
		TotalAmount:       total,
		CreatedAt:         g.now(),
	}, nil
}

// GetPaymentStatus reports a random outcome for paymentID.
func (g *Gateway) GetPaymentStatus(_ context.Context, paymentID string) (*domain.PaymentResult, error) {
	return &domain.PaymentResult{
		PaymentID:     paymentID,
		Status:        g.pick(),
		PaymentMethod: paymentMethod,
	}, nil
}

// ProcessNotification resolves payment notifications. The order comes from the payload.
func (g *Gateway) ProcessNotification(ctx context.Context, n domain.WebhookNotification) (*domain.PaymentResult, error) {
	if n.Type != "payment" {
		return nil, nil
	}

	result, err := g.GetPaymentStatus(ctx, n.Data.ID)
	if err != nil {
		return nil, err
	}
	result.OrderID = n.Data.OrderID
	result.UserID = n.Data.UserID
	return result, nil
}

// ApprovePayment forces an approval.
func (g *Gateway) ApprovePayment(_ context.Context, orderID string) (*domain.PaymentResult, error) {
	g.logger.Info("approving simulated payment", zap.String("order_id", orderID))
	return g.forced(orderID, domain.StatusApproved), nil
}

// RejectPayment forces a rejection.
func (g *Gateway) RejectPayment(_ context.Context, orderID string) (*domain.PaymentResult, error) {
	g.logger.Info("rejecting simulated payment", zap.String("order_id", orderID))
	return g.forced(orderID, domain.StatusRejected), nil
}

// CancelPayment always succeeds.
func (g *Gateway) CancelPayment(_ context.Context, paymentID string) error {
	g.logger.Info("simulated cancellation", zap.String("payment_id", paymentID))
	return nil
}

// RefundPayment always succeeds.
func (g *Gateway) RefundPayment(_ context.Context, paymentID string) error {
	g.logger.Info("simulated refund", zap.String("payment_id", paymentID))
	return nil
}

func (g *Gateway) forced(orderID string, status domain.Status) *domain.PaymentResult {
	return &domain.PaymentResult{
		PaymentID:     uuid.NewString(),
		Status:        status,
		PaymentMethod: paymentMethod,
		OrderID:       orderID,
	}
}
