// Package payment implements the core business logic for payment processing.
// This is the service/use-case layer in Clean Architecture.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zerowaste/payment-service/internal/domain"
)

// Simulation actions accepted by Simulate.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionPending = "pending"
)

// Config holds the settings the service needs from the environment.
type Config struct {
	PaymentsExchange string
	Currency         string
}

// Service implements the payment state engine.
// It orchestrates the repository, the gateway, the broker and the notifiers.
type Service struct {
	repo      domain.PaymentRepository
	gateway   domain.PaymentGateway
	publisher domain.EventPublisher
	notifier  domain.UserNotifier
	monolith  domain.MonolithNotifier
	cfg       Config
	logger    *zap.Logger

	now        func() time.Time
	newOrderID func() string
}

// NewService creates a new payment service with the required dependencies.
func NewService(
	repo domain.PaymentRepository,
	gateway domain.PaymentGateway,
	publisher domain.EventPublisher,
	notifier domain.UserNotifier,
	monolith domain.MonolithNotifier,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		gateway:    gateway,
		publisher:  publisher,
		notifier:   notifier,
		monolith:   monolith,
		cfg:        cfg,
		logger:     logger.With(zap.String("component", "payment_service")),
		now:        func() time.Time { return time.Now().UTC() },
		newOrderID: func() string { return uuid.NewString() },
	}
}

// CreateRequest is the input of Create.
type CreateRequest struct {
	UserID      string
	OrderID     string
	Items       []domain.Item
	Payer       *domain.Payer
	CallbackURL string
}

// CreateResult is returned to the caller of Create.
type CreateResult struct {
	PaymentID  string  `json:"paymentId"`
	OrderID    string  `json:"orderId"`
	Amount     float64 `json:"amount"`
	PaymentURL string  `json:"paymentUrl"`
}

// Create handles the creation flow:
// 1. Validates the request and computes the amount
// 2. Persists the pending payment
// 3. Opens a checkout at the gateway and stores its URL
// 4. Publishes payment.request
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Payer == nil {
		return nil, domain.NewPaymentError(domain.ErrInvalidPayment, "payer is required", "VALIDATION_ERROR")
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = s.newOrderID()
	}

	p, err := domain.NewPayment(orderID, req.UserID, s.cfg.Currency, req.Items, s.now())
	if err != nil {
		return nil, err
	}

	// Step 1: persist the pending payment
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, domain.ErrDuplicateOrder) {
			return nil, domain.NewPaymentError(err,
				fmt.Sprintf("order '%s' already has a payment", orderID),
				"DUPLICATE_ORDER")
		}
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	// Step 2: open the checkout
	intent, err := s.gateway.CreatePaymentIntent(ctx, domain.IntentRequest{
		OrderID:     p.OrderID,
		UserID:      p.UserID,
		Items:       p.Items,
		Currency:    p.Currency,
		Payer:       *req.Payer,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		s.logger.Error("failed to create payment intent", zap.String("order_id", orderID), zap.Error(err))
		return nil, domain.NewPaymentError(domain.ErrPaymentGatewayError,
			"failed to create payment intent",
			"GATEWAY_ERROR")
	}

	p.PaymentURL = intent.InitPoint
	p.PaymentID = intent.ID
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save payment url: %w", err)
	}

	// Step 3: announce the request
	event := newEvent(ActionCreated, p, s.now())
	event.Status = ""
	event.PaymentURL = p.PaymentURL
	if err := s.publish(ctx, RoutingKeyRequest, event); err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("payment_id", p.ID),
		zap.String("order_id", p.OrderID),
		zap.Float64("amount", p.Amount))

	return &CreateResult{
		PaymentID:  p.ID,
		OrderID:    p.OrderID,
		Amount:     p.Amount,
		PaymentURL: p.PaymentURL,
	}, nil
}

// Get returns a payment by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Payment, error) {
	return s.repo.FindByID(ctx, id)
}

// GetByOrderID returns a payment by its orderId.
func (s *Service) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	return s.repo.FindByOrderID(ctx, orderID)
}

// List returns one page of all payments, newest first, and the total count.
func (s *Service) List(ctx context.Context, page domain.PageRequest) ([]domain.Payment, int64, error) {
	return s.findAndCount(ctx, domain.PaymentFilter{}, page)
}

// Recent returns the n newest payments.
func (s *Service) Recent(ctx context.Context, n int) ([]domain.Payment, error) {
	return s.repo.Find(ctx, domain.PaymentFilter{}, domain.PageRequest{Limit: n})
}

// UserListing is one page of a user's payments with per-status statistics.
type UserListing struct {
	Payments []domain.Payment
	Total    int64
	Stats    map[domain.Status]int64
}

// ListByUser lists a user's payments. Stats cover every payment of the user,
// not only those matching the filter.
func (s *Service) ListByUser(ctx context.Context, filter domain.PaymentFilter, page domain.PageRequest) (*UserListing, error) {
	payments, total, err := s.findAndCount(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, domain.NewPaymentError(domain.ErrPaymentNotFound,
			"no payments found for this user",
			"NOT_FOUND")
	}

	stats, err := s.repo.CountByStatus(ctx, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment stats: %w", err)
	}

	return &UserListing{Payments: payments, Total: total, Stats: stats}, nil
}

func (s *Service) findAndCount(ctx context.Context, filter domain.PaymentFilter, page domain.PageRequest) ([]domain.Payment, int64, error) {
	var (
		payments []domain.Payment
		total    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, err = s.repo.Find(gctx, filter, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, total, nil
}

// ProcessNotification applies a webhook to the matching payment.
// It runs after the webhook was acknowledged, so errors are only logged by the caller.
func (s *Service) ProcessNotification(ctx context.Context, n domain.WebhookNotification) error {
	if n.Type != "payment" {
		s.logger.Info("ignoring webhook", zap.String("type", n.Type))
		return nil
	}

	result, err := s.gateway.ProcessNotification(ctx, n)
	if err != nil {
		return domain.NewPaymentError(domain.ErrPaymentGatewayError,
			"failed to resolve notification",
			"WEBHOOK_GATEWAY_ERROR")
	}
	if result == nil {
		return nil
	}

	orderID := result.OrderID
	if orderID == "" {
		orderID = n.Data.OrderID
	}

	p, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}

	p.ApplyResult(*result, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update payment %s: %w", p.ID, err)
	}

	s.logger.Info("webhook processed",
		zap.String("order_id", p.OrderID),
		zap.String("payment_id", p.PaymentID),
		zap.String("status", string(p.Status)))

	if p.Status == domain.StatusApproved || p.Status == domain.StatusRejected {
		s.notifyUser(ctx, p)
	}

	return s.publish(ctx, RoutingKeyResult, newEvent(ActionUpdated, p, s.now()))
}

// Simulate forces the outcome of a payment. No status precondition is checked.
func (s *Service) Simulate(ctx context.Context, orderID, action string) (*domain.Payment, error) {
	p, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var result *domain.PaymentResult
	switch action {
	case ActionApprove, ActionReject:
		sim, ok := s.gateway.(domain.PaymentSimulator)
		if !ok {
			return nil, domain.NewPaymentError(domain.ErrUnsupportedAction,
				"the configured gateway cannot simulate payments",
				"SIMULATION_DISABLED")
		}
		if action == ActionApprove {
			result, err = sim.ApprovePayment(ctx, orderID)
		} else {
			result, err = sim.RejectPayment(ctx, orderID)
		}
		if err != nil {
			return nil, domain.NewPaymentError(domain.ErrPaymentGatewayError,
				fmt.Sprintf("failed to %s payment", action),
				"GATEWAY_ERROR")
		}
	case ActionPending:
		paymentID := p.PaymentID
		if paymentID == "" {
			paymentID = fmt.Sprintf("sim_%d", s.now().UnixMilli())
		}
		result = &domain.PaymentResult{
			PaymentID:     paymentID,
			Status:        domain.StatusPending,
			PaymentMethod: "simulation",
		}
	default:
		return nil, domain.NewPaymentError(domain.ErrUnsupportedAction,
			fmt.Sprintf("action '%s' is not supported", action),
			"INVALID_ACTION")
	}

	p.ApplyResult(*result, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", p.ID, err)
	}

	if p.Status == domain.StatusApproved || p.Status == domain.StatusRejected {
		s.notifyUser(ctx, p)
	}
	if p.Status == domain.StatusApproved {
		s.notifyMonolith(ctx, p)
	}

	if err := s.publish(ctx, RoutingKeyResult, newEvent(ActionUpdated, p, s.now())); err != nil {
		return nil, err
	}

	s.logger.Info("payment simulated",
		zap.String("order_id", p.OrderID),
		zap.String("action", action),
		zap.String("status", string(p.Status)))

	return p, nil
}

// Cancel cancels a pending payment.
func (s *Service) Cancel(ctx context.Context, id string) (*domain.Payment, error) {
	return s.transition(ctx, id, ActionCancelled, (*domain.Payment).Cancel, s.gateway.CancelPayment)
}

// Refund refunds an approved payment.
func (s *Service) Refund(ctx context.Context, id string) (*domain.Payment, error) {
	return s.transition(ctx, id, ActionRefunded, (*domain.Payment).Refund, s.gateway.RefundPayment)
}

// transition checks the precondition, calls the gateway, then persists and publishes.
func (s *Service) transition(
	ctx context.Context,
	id, action string,
	apply func(*domain.Payment, time.Time) error,
	remote func(context.Context, string) error,
) (*domain.Payment, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(p, s.now()); err != nil {
		return nil, err
	}

	if err := remote(ctx, p.PaymentID); err != nil {
		s.logger.Error("gateway rejected transition",
			zap.String("payment_id", p.ID),
			zap.String("action", action),
			zap.Error(err))
		return nil, domain.NewPaymentError(domain.ErrPaymentGatewayError,
			"payment gateway rejected the operation",
			"GATEWAY_ERROR")
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", p.ID, err)
	}

	if err := s.publish(ctx, RoutingKeyStatus, newEvent(action, p, s.now())); err != nil {
		return nil, err
	}

	s.logger.Info("payment transitioned",
		zap.String("payment_id", p.ID),
		zap.String("status", string(p.Status)))

	return p, nil
}

// ForceStatus sets any status on a payment and pushes the outcome to token when given.
// Only exposed outside production.
func (s *Service) ForceStatus(ctx context.Context, orderID string, status domain.Status, token string) (*domain.Payment, error) {
	p, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	p.ApplyResult(domain.PaymentResult{Status: status, PaymentMethod: "test"}, s.now())
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", p.ID, err)
	}

	if err := s.publish(ctx, RoutingKeyResult, newEvent(ActionUpdated, p, s.now())); err != nil {
		return nil, err
	}

	if token != "" {
		if err := s.notifier.NotifyDevice(ctx, token, p); err != nil {
			s.logger.Warn("failed to push test notification", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	return p, nil
}

func (s *Service) publish(ctx context.Context, routingKey string, event Event) error {
	if err := s.publisher.Publish(ctx, s.cfg.PaymentsExchange, routingKey, event); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("routing_key", routingKey),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return domain.NewPaymentError(domain.ErrPublishFailed,
			fmt.Sprintf("failed to publish %s", routingKey),
			"BROKER_ERROR")
	}
	return nil
}

func (s *Service) notifyUser(ctx context.Context, p *domain.Payment) {
	if _, err := s.notifier.NotifyPaymentStatus(ctx, p); err != nil {
		s.logger.Warn("failed to notify user", zap.String("order_id", p.OrderID), zap.Error(err))
	}
}

func (s *Service) notifyMonolith(ctx context.Context, p *domain.Payment) {
	if err := s.monolith.NotifyPaymentStatusUpdate(ctx, p.OrderID, p.Status, p.PaymentID); err != nil {
		s.logger.Warn("failed to notify monolith", zap.String("order_id", p.OrderID), zap.Error(err))
	}
}
