// Package mercadopago implements the PaymentGateway interface using the Mercado Pago SDK.
package mercadopago

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/mercadopago/sdk-go/pkg/refund"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
)

const statementDescriptor = "ZeroWaste"

// Adapter implements the domain.PaymentGateway interface using Mercado Pago SDK.
type Adapter struct {
	preferences     preference.Client
	payments        payment.Client
	refunds         refund.Client
	notificationURL string
	logger          *zap.Logger
}

// NewAdapter creates a new Mercado Pago adapter for accessToken.
// notificationURL is where Mercado Pago posts webhooks and may be empty.
func NewAdapter(accessToken, notificationURL string, logger *zap.Logger) (*Adapter, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP config: %w", err)
	}

	return &Adapter{
		preferences:     preference.NewClient(cfg),
		payments:        payment.NewClient(cfg),
		refunds:         refund.NewClient(cfg),
		notificationURL: notificationURL,
		logger:          logger.With(zap.String("component", "mercadopago")),
	}, nil
}

// CreatePaymentIntent creates a checkout preference.
// The orderId travels as external reference and metadata so webhooks can be matched.
func (a *Adapter) CreatePaymentIntent(ctx context.Context, req domain.IntentRequest) (*domain.PaymentIntent, error) {
	result, err := a.preferences.Create(ctx, buildPreference(req, a.notificationURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}

	a.logger.Info("preference created",
		zap.String("preference_id", result.ID),
		zap.String("order_id", req.OrderID))

	return &domain.PaymentIntent{
		ID:                result.ID,
		InitPoint:         result.InitPoint,
		ExternalReference: req.OrderID,
		TotalAmount:       domain.ComputeAmount(req.Items),
		CreatedAt:         time.Now(),
	}, nil
}

// GetPaymentStatus retrieves a payment and maps its status to the domain.
func (a *Adapter) GetPaymentStatus(ctx context.Context, paymentID string) (*domain.PaymentResult, error) {
	id, err := parsePaymentID(paymentID)
	if err != nil {
		return nil, err
	}

	result, err := a.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment info: %w", err)
	}

	orderID := result.ExternalReference
	var userID string
	if result.Metadata != nil {
		if v, ok := result.Metadata["order_id"].(string); ok && orderID == "" {
			orderID = v
		}
		if v, ok := result.Metadata["user_id"].(string); ok {
			userID = v
		}
	}

	return &domain.PaymentResult{
		PaymentID:     paymentID,
		Status:        MapStatus(result.Status),
		PaymentMethod: result.PaymentMethodID,
		OrderID:       orderID,
		UserID:        userID,
	}, nil
}

// ProcessNotification fetches the payment a webhook refers to.
func (a *Adapter) ProcessNotification(ctx context.Context, n domain.WebhookNotification) (*domain.PaymentResult, error) {
	if n.Type != "payment" {
		return nil, nil
	}
	return a.GetPaymentStatus(ctx, n.Data.ID)
}

// CancelPayment cancels a payment. Payments still at the preference stage have
// no numeric id and nothing to cancel remotely.
func (a *Adapter) CancelPayment(ctx context.Context, paymentID string) error {
	id, err := parsePaymentID(paymentID)
	if err != nil {
		a.logger.Info("no remote payment to cancel", zap.String("payment_id", paymentID))
		return nil
	}
	if _, err := a.payments.Cancel(ctx, id); err != nil {
		return fmt.Errorf("failed to cancel payment: %w", err)
	}
	return nil
}

// RefundPayment refunds the full amount of a payment.
func (a *Adapter) RefundPayment(ctx context.Context, paymentID string) error {
	id, err := parsePaymentID(paymentID)
	if err != nil {
		return err
	}
	if _, err := a.refunds.Create(ctx, id); err != nil {
		return fmt.Errorf("failed to refund payment: %w", err)
	}
	return nil
}

// MapStatus converts a Mercado Pago payment status into a domain status.
func MapStatus(status string) domain.Status {
	switch status {
	case "approved", "authorized":
		return domain.StatusApproved
	case "rejected", "charged_back":
		return domain.StatusRejected
	case "cancelled":
		return domain.StatusCancelled
	case "refunded":
		return domain.StatusRefunded
	default:
		// pending, in_process, in_mediation and anything new
		return domain.StatusPending
	}
}

func buildPreference(req domain.IntentRequest, notificationURL string) preference.Request {
	items := make([]preference.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, preference.ItemRequest{
			Title:       item.Title,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			CurrencyID:  req.Currency,
		})
	}

	payer := &preference.PayerRequest{
		Name:  req.Payer.Name,
		Email: req.Payer.Email,
	}
	if req.Payer.Identification != nil {
		payer.Identification = &preference.IdentificationRequest{
			Type:   req.Payer.Identification.Type,
			Number: req.Payer.Identification.Number,
		}
	}

	request := preference.Request{
		Items:               items,
		Payer:               payer,
		ExternalReference:   req.OrderID,
		StatementDescriptor: statementDescriptor,
		NotificationURL:     notificationURL,
		Metadata: map[string]any{
			"order_id": req.OrderID,
			"user_id":  req.UserID,
		},
	}

	if req.CallbackURL != "" {
		base := strings.TrimRight(req.CallbackURL, "/")
		request.BackURLs = &preference.BackURLsRequest{
			Success: base + "/success",
			Failure: base + "/failure",
			Pending: base + "/pending",
		}
		request.AutoReturn = "approved"
	}

	return request
}

func parsePaymentID(paymentID string) (int, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return 0, fmt.Errorf("invalid payment ID format %q: %w", paymentID, err)
	}
	return id, nil
}
