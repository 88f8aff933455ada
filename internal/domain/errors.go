// Package domain contains the core business entities and interfaces for the payment service.
package domain

import "errors"

// Domain errors represent business rule violations.
// These are used to communicate specific error conditions from the domain layer.
var (
	// ErrPaymentNotFound is returned when no payment matches an id, order or user.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidPayment is returned when the payment request data is invalid.
	ErrInvalidPayment = errors.New("invalid payment data")

	// ErrDuplicateOrder is returned when an orderId is already taken.
	ErrDuplicateOrder = errors.New("order already has a payment")

	// ErrInvalidTransition is returned when the current status forbids the operation.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidFilter is returned for unknown statuses or unparseable dates in listings.
	ErrInvalidFilter = errors.New("invalid listing filter")

	// ErrUnsupportedAction is returned for unknown simulation actions.
	ErrUnsupportedAction = errors.New("unsupported payment action")

	// ErrPaymentGatewayError is returned when the gateway or the simulator fails.
	ErrPaymentGatewayError = errors.New("payment gateway error")

	// ErrPublishFailed is returned when the broker rejects a message.
	ErrPublishFailed = errors.New("failed to publish event")

	// ErrWebhookValidationFailed is returned when a webhook signature is invalid.
	ErrWebhookValidationFailed = errors.New("webhook signature validation failed")

	// ErrMonolithCallbackFailed is returned when the monolith rejects a callback.
	ErrMonolithCallbackFailed = errors.New("failed to notify monolith")
)

// PaymentError wraps a domain error with additional context.
type PaymentError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface.
func (e *PaymentError) Error() string {
	if e.Message != "" {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work with PaymentError.
func (e *PaymentError) Unwrap() error {
	return e.Err
}

// NewPaymentError creates a new PaymentError with the given error and message.
func NewPaymentError(err error, message, code string) *PaymentError {
	return &PaymentError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}
