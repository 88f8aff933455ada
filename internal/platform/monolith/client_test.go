package monolith_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/platform/monolith"
)

func TestGetUserFCMToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/user/u1/fcm-token":
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
		case "/api/auth/user/u2/fcm-token":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := monolith.NewClient(srv.URL, time.Second, zap.NewNop())
	ctx := context.Background()

	token, err := client.GetUserFCMToken(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	token, err = client.GetUserFCMToken(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = client.GetUserFCMToken(ctx, "u3")
	assert.Error(t, err)
}

func TestNotifyPaymentStatusUpdate(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/webhooks/payment-status", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := monolith.NewClient(srv.URL, time.Second, zap.NewNop())

	err := client.NotifyPaymentStatusUpdate(context.Background(), "o1", domain.StatusApproved, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"orderId": "o1", "status": "approved", "paymentId": "pay-1"}, got)
}

func TestNotifyPaymentStatusUpdate_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := monolith.NewClient(srv.URL, time.Second, zap.NewNop())

	err := client.NotifyPaymentStatusUpdate(context.Background(), "o1", domain.StatusApproved, "pay-1")
	assert.ErrorIs(t, err, domain.ErrMonolithCallbackFailed)
}
