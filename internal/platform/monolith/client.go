// Package monolith implements the TokenResolver and MonolithNotifier interfaces
// by communicating with the order monolith's HTTP API.
package monolith

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
)

// Client implements domain.TokenResolver and domain.MonolithNotifier
// by making HTTP requests to the monolith.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new monolith client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With(zap.String("component", "monolith_client")),
	}
}

type fcmTokenResponse struct {
	Token string `json:"token"`
}

// GetUserFCMToken fetches the push token of userID.
// A missing user or token yields an empty token, not an error.
func (c *Client) GetUserFCMToken(ctx context.Context, userID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/auth/user/%s/fcm-token", c.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue
	case http.StatusNotFound:
		c.logger.Warn("user has no push token", zap.String("user_id", userID))
		return "", nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp fcmTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return tokenResp.Token, nil
}

type paymentStatusRequest struct {
	OrderID   string        `json:"orderId"`
	Status    domain.Status `json:"status"`
	PaymentID string        `json:"paymentId"`
}

// NotifyPaymentStatusUpdate reports a payment outcome to the monolith.
func (c *Client) NotifyPaymentStatusUpdate(ctx context.Context, orderID string, status domain.Status, paymentID string) error {
	endpoint := fmt.Sprintf("%s/api/webhooks/payment-status", c.baseURL)

	jsonBody, err := json.Marshal(paymentStatusRequest{
		OrderID:   orderID,
		Status:    status,
		PaymentID: paymentID,
	})
	if err != nil {
		return domain.NewPaymentError(domain.ErrMonolithCallbackFailed,
			"failed to marshal payload", "MARSHAL_ERROR")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return domain.NewPaymentError(domain.ErrMonolithCallbackFailed,
			"failed to create request", "REQUEST_ERROR")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewPaymentError(domain.ErrMonolithCallbackFailed,
			"request failed: "+err.Error(), "HTTP_ERROR")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return domain.NewPaymentError(domain.ErrMonolithCallbackFailed,
			fmt.Sprintf("monolith returned status %d: %s", resp.StatusCode, string(body)),
			"MONOLITH_ERROR")
	}

	c.logger.Info("monolith notified",
		zap.String("order_id", orderID),
		zap.String("status", string(status)))
	return nil
}
