package payment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
)

// Notifier publishes user push notifications for payment outcomes.
type Notifier struct {
	publisher domain.EventPublisher
	tokens    domain.TokenResolver
	exchange  string
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotifier creates a notifier publishing to exchange.
func NewNotifier(publisher domain.EventPublisher, tokens domain.TokenResolver, exchange string, logger *zap.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		tokens:    tokens,
		exchange:  exchange,
		logger:    logger.With(zap.String("component", "notifier")),
		now:       time.Now,
	}
}

// NotifyPaymentStatus sends the status notification to the payment's owner.
// A user without a registered token is skipped.
func (n *Notifier) NotifyPaymentStatus(ctx context.Context, p *domain.Payment) (bool, error) {
	token, err := n.tokens.GetUserFCMToken(ctx, p.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve push token for user %s: %w", p.UserID, err)
	}
	if token == "" {
		n.logger.Info("no push token registered, skipping notification",
			zap.String("user_id", p.UserID),
			zap.String("order_id", p.OrderID))
		return false, nil
	}

	if err := n.NotifyDevice(ctx, token, p); err != nil {
		return false, err
	}
	return true, nil
}

// NotifyDevice sends the status notification of p to token.
func (n *Notifier) NotifyDevice(ctx context.Context, token string, p *domain.Payment) error {
	msg := BuildPushNotification(token, p, n.now())
	if err := n.publisher.Publish(ctx, n.exchange, RoutingKeyNotification, msg); err != nil {
		return fmt.Errorf("failed to publish notification for order %s: %w", p.OrderID, err)
	}

	n.logger.Info("push notification published",
		zap.String("order_id", p.OrderID),
		zap.String("status", string(p.Status)))
	return nil
}

// BuildPushNotification renders the notification text for the payment status.
func BuildPushNotification(token string, p *domain.Payment, now time.Time) PushNotification {
	amount := fmt.Sprintf("%s %.2f", p.Currency, p.Amount)

	var content PushContent
	switch p.Status {
	case domain.StatusApproved:
		content = PushContent{
			Title: "Payment approved",
			Body:  fmt.Sprintf("Your payment of %s for order %s was approved.", amount, p.OrderID),
		}
	case domain.StatusRejected:
		content = PushContent{
			Title: "Payment rejected",
			Body:  fmt.Sprintf("Your payment of %s for order %s was rejected. Please try again.", amount, p.OrderID),
		}
	case domain.StatusPending:
		content = PushContent{
			Title: "Payment pending",
			Body:  fmt.Sprintf("Your payment of %s for order %s is being processed.", amount, p.OrderID),
		}
	default:
		content = PushContent{
			Title: "Payment updated",
			Body:  fmt.Sprintf("Your payment for order %s is now %s.", p.OrderID, p.Status),
		}
	}

	return PushNotification{
		To:           token,
		Notification: content,
		Data: map[string]string{
			"type":      "payment_status",
			"orderId":   p.OrderID,
			"status":    string(p.Status),
			"paymentId": p.PaymentID,
			"amount":    fmt.Sprintf("%.2f", p.Amount),
		},
		Timestamp: now,
	}
}
