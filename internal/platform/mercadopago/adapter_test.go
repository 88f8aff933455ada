package mercadopago

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerowaste/payment-service/internal/domain"
)

func TestMapStatus(t *testing.T) {
	tests := map[string]domain.Status{
		"approved":     domain.StatusApproved,
		"authorized":   domain.StatusApproved,
		"pending":      domain.StatusPending,
		"in_process":   domain.StatusPending,
		"in_mediation": domain.StatusPending,
		"rejected":     domain.StatusRejected,
		"charged_back": domain.StatusRejected,
		"cancelled":    domain.StatusCancelled,
		"refunded":     domain.StatusRefunded,
		"unknown":      domain.StatusPending,
	}
	for in, want := range tests {
		assert.Equal(t, want, MapStatus(in), in)
	}
}

func TestBuildPreference(t *testing.T) {
	req := domain.IntentRequest{
		OrderID:  "o1",
		UserID:   "u1",
		Currency: "BRL",
		Items:    []domain.Item{{Title: "Compost kit", Quantity: 2, UnitPrice: 35.5}},
		Payer: domain.Payer{
			Name:           "Ana",
			Email:          "ana@example.com",
			Identification: &domain.Identification{Type: "CPF", Number: "12345678909"},
		},
		CallbackURL: "https://shop.example.com/checkout/",
	}

	pref := buildPreference(req, "https://api.example.com/api/payments/webhook")

	require.Len(t, pref.Items, 1)
	assert.Equal(t, "BRL", pref.Items[0].CurrencyID)
	assert.Equal(t, 2, pref.Items[0].Quantity)
	assert.Equal(t, "o1", pref.ExternalReference)
	assert.Equal(t, "ZeroWaste", pref.StatementDescriptor)
	require.NotNil(t, pref.Payer.Identification)
	assert.Equal(t, "CPF", pref.Payer.Identification.Type)
	require.NotNil(t, pref.BackURLs)
	assert.Equal(t, "https://shop.example.com/checkout/success", pref.BackURLs.Success)
	assert.Equal(t, "approved", pref.AutoReturn)
	assert.Equal(t, "u1", pref.Metadata["user_id"])
}

func TestBuildPreference_NoCallback(t *testing.T) {
	pref := buildPreference(domain.IntentRequest{OrderID: "o1"}, "")

	assert.Nil(t, pref.BackURLs)
	assert.Empty(t, pref.AutoReturn)
}

func TestWebhookValidator(t *testing.T) {
	v := NewWebhookValidator("s3cret")
	signature := Sign(BuildManifest("123", "req-1", "1700000000"), "s3cret")

	assert.True(t, v.ValidateSignature("ts=1700000000,v1="+signature, "req-1", "123"))
	assert.False(t, v.ValidateSignature("ts=1700000000,v1="+signature, "req-2", "123"))
	assert.False(t, v.ValidateSignature("ts=1700000000", "req-1", "123"))
	assert.False(t, v.ValidateSignature("", "req-1", "123"))
	assert.False(t, NewWebhookValidator("").ValidateSignature("ts=1,v1=abc", "req-1", "123"))
}

func TestBuildManifest(t *testing.T) {
	assert.Equal(t, "id:abc;request-id:r;ts:1;", BuildManifest("ABC", "r", "1"))
	assert.Equal(t, "ts:1;", BuildManifest("", "", "1"))
}
