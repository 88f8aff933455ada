package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerowaste/payment-service/internal/domain"
)

func TestNewPayment_ComputesAmountFromItems(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	p, err := domain.NewPayment("o1", "u1", "BRL", []domain.Item{
		{Title: "Box", Quantity: 2, UnitPrice: 10},
		{Title: "Bag", Quantity: 3, UnitPrice: 10},
	}, now)

	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Amount)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.LastModified())
}

func TestNewPayment_AvoidsFloatDrift(t *testing.T) {
	p, err := domain.NewPayment("o1", "u1", "BRL", []domain.Item{
		{Title: "a", Quantity: 3, UnitPrice: 0.1},
		{Title: "b", Quantity: 1, UnitPrice: 0.2},
	}, time.Now())

	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Amount)
}

func TestNewPayment_Validation(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		items  []domain.Item
	}{
		{"missing user", "", []domain.Item{{Title: "a", Quantity: 1, UnitPrice: 1}}},
		{"no items", "u1", nil},
		{"negative price", "u1", []domain.Item{{Title: "a", Quantity: 1, UnitPrice: -1}}},
		{"negative quantity", "u1", []domain.Item{{Title: "a", Quantity: -1, UnitPrice: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewPayment("o1", tt.userID, "BRL", tt.items, time.Now())
			assert.True(t, errors.Is(err, domain.ErrInvalidPayment))
		})
	}
}

func TestPayment_Cancel(t *testing.T) {
	p := &domain.Payment{Status: domain.StatusPending}
	require.NoError(t, p.Cancel(time.Now()))
	assert.Equal(t, domain.StatusCancelled, p.Status)

	err := p.Cancel(time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "cancelled")
}

func TestPayment_Refund(t *testing.T) {
	p := &domain.Payment{Status: domain.StatusPending}
	assert.ErrorIs(t, p.Refund(time.Now()), domain.ErrInvalidTransition)

	p.Status = domain.StatusApproved
	require.NoError(t, p.Refund(time.Now()))
	assert.Equal(t, domain.StatusRefunded, p.Status)
}

func TestPayment_ApplyResultKeepsExistingIDs(t *testing.T) {
	p := &domain.Payment{Status: domain.StatusCancelled, PaymentID: "sim_1", PaymentMethod: "simulation"}

	p.ApplyResult(domain.PaymentResult{Status: domain.StatusApproved}, time.Now())

	assert.Equal(t, domain.StatusApproved, p.Status)
	assert.Equal(t, "sim_1", p.PaymentID)
	assert.Equal(t, "simulation", p.PaymentMethod)
}

func TestParseStatus(t *testing.T) {
	s, ok := domain.ParseStatus("refunded")
	assert.True(t, ok)
	assert.Equal(t, domain.StatusRefunded, s)

	_, ok = domain.ParseStatus("paid")
	assert.False(t, ok)
}
