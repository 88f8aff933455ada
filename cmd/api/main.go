// Payment Service
//
// This is the main entry point for the payment processing service.
// It wires up all dependencies and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zerowaste/payment-service/config"
	"github.com/zerowaste/payment-service/internal/api"
	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/payment"
	"github.com/zerowaste/payment-service/internal/platform/kafka"
	"github.com/zerowaste/payment-service/internal/platform/memory"
	"github.com/zerowaste/payment-service/internal/platform/mercadopago"
	"github.com/zerowaste/payment-service/internal/platform/mongo"
	"github.com/zerowaste/payment-service/internal/platform/monolith"
	"github.com/zerowaste/payment-service/internal/platform/rabbitmq"
	"github.com/zerowaste/payment-service/internal/platform/simulator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Server.GinMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("payment service stopped", zap.Error(err))
	}
}

func newLogger(ginMode string) (*zap.Logger, error) {
	if ginMode != "release" {
		return zap.NewDevelopment()
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapCfg.Build()
}

// closer releases a connection on shutdown.
type closer func(ctx context.Context) error

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting payment service",
		zap.String("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("store", cfg.Store.Driver),
		zap.String("broker", cfg.Broker.Driver),
		zap.String("gateway", cfg.Gateway.Driver))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wire up dependencies (manual dependency injection)
	//
	// Infrastructure Layer
	repo, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll(logger, "store", closeStore)

	publisher, closeBroker, err := newBroker(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll(logger, "broker", closeBroker)

	gateway, err := newGateway(cfg, logger)
	if err != nil {
		return err
	}

	monolithClient := monolith.NewClient(cfg.Monolith.BaseURL, cfg.Monolith.Timeout, logger)
	notifier := payment.NewNotifier(publisher, monolithClient, cfg.Broker.NotificationsExchange, logger)

	// Service Layer
	paymentService := payment.NewService(
		repo,           // implements domain.PaymentRepository
		gateway,        // implements domain.PaymentGateway
		publisher,      // implements domain.EventPublisher
		notifier,       // implements domain.UserNotifier
		monolithClient, // implements domain.MonolithNotifier
		payment.Config{
			PaymentsExchange: cfg.Broker.PaymentsExchange,
			Currency:         cfg.Gateway.Currency,
		},
		logger,
	)

	dispatcher := payment.NewDispatcher(paymentService, cfg.Webhook.Workers, cfg.Webhook.QueueSize, cfg.Webhook.Timeout, logger)
	dispatcher.Start(ctx)

	// API Layer
	var validator api.SignatureValidator
	if cfg.Gateway.WebhookSecret != "" {
		validator = mercadopago.NewWebhookValidator(cfg.Gateway.WebhookSecret)
	} else {
		logger.Warn("MP_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	handler := api.NewHandler(paymentService, dispatcher, cfg.Server.APIVersion, logger)
	router := api.SetupRouter(handler, api.RouterConfig{
		GinMode:          cfg.Server.GinMode,
		APIVersion:       cfg.Server.APIVersion,
		EnableSimulation: cfg.Gateway.Driver == config.GatewaySimulator,
		EnableTestRoutes: !cfg.IsProduction(),
		Validator:        validator,
		Logger:           logger,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			dispatcher.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	// Drain acknowledged webhooks before the broker and store go away.
	dispatcher.Stop()
	return nil
}

func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.PaymentRepository, closer, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		repo, err := mongo.Connect(connectCtx, cfg.Store.MongoURI, cfg.Store.Database, cfg.Store.Collection, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		logger.Warn("using in-memory payment store, data is lost on restart")
		return memory.NewPaymentRepository(), nil, nil
	}
}

type publisherCloser interface {
	domain.EventPublisher
	Close() error
}

func newBroker(cfg *config.Config, logger *zap.Logger) (domain.EventPublisher, closer, error) {
	var publisher publisherCloser
	switch cfg.Broker.Driver {
	case config.BrokerRabbitMQ:
		p, err := rabbitmq.Dial(cfg.Broker.RabbitMQURL, rabbitmq.Topology{
			PaymentsExchange:      cfg.Broker.PaymentsExchange,
			NotificationsExchange: cfg.Broker.NotificationsExchange,
			PaymentRequestsQueue:  cfg.Broker.PaymentRequestsQueue,
			PaymentResultsQueue:   cfg.Broker.PaymentResultsQueue,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		publisher = p
	case config.BrokerKafka:
		publisher = kafka.NewPublisher(cfg.Broker.KafkaBrokers, logger)
	default:
		logger.Warn("using in-memory broker, events are not delivered")
		publisher = memory.NewBroker()
	}
	return publisher, func(context.Context) error { return publisher.Close() }, nil
}

func newGateway(cfg *config.Config, logger *zap.Logger) (domain.PaymentGateway, error) {
	if cfg.Gateway.Driver == config.GatewayMercadoPago {
		return mercadopago.NewAdapter(cfg.Gateway.AccessToken, cfg.Gateway.WebhookURL, logger)
	}
	return simulator.NewGateway(fmt.Sprintf("http://localhost:%s", cfg.Server.Port), logger), nil
}

func closeAll(logger *zap.Logger, name string, fn closer) {
	if fn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Error("failed to close "+name, zap.Error(err))
	}
}
