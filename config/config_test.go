package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3001", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, BrokerMemory, cfg.Broker.Driver)
	assert.Equal(t, GatewaySimulator, cfg.Gateway.Driver)
	assert.Equal(t, "payments_exchange", cfg.Broker.PaymentsExchange)
	assert.Equal(t, "process_notification_exchange", cfg.Broker.NotificationsExchange)
	assert.Equal(t, 5*time.Second, cfg.Monolith.Timeout)
	assert.Equal(t, 2, cfg.Webhook.Workers)
	assert.False(t, cfg.IsProduction())
	require.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_ENV", "production")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MONOLITH_TIMEOUT", "250ms")
	t.Setenv("WEBHOOK_WORKERS", "not-a-number")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broker.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Monolith.Timeout)
	assert.Equal(t, 2, cfg.Webhook.Workers)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown store", func(c *Config) { c.Store.Driver = "postgres" }, "unknown STORE_DRIVER"},
		{"unknown broker", func(c *Config) { c.Broker.Driver = "nats" }, "unknown BROKER_DRIVER"},
		{"mercadopago without token", func(c *Config) { c.Gateway.Driver = GatewayMercadoPago }, "MERCADOPAGO_ACCESS_TOKEN"},
		{"no workers", func(c *Config) { c.Webhook.Workers = 0 }, "WEBHOOK_WORKERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
