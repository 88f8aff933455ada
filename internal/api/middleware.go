package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/hateoas"
)

// CORSMiddleware handles Cross-Origin Resource Sharing.
// Preflight requests are answered here with 204.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With, If-None-Match, If-Modified-Since")
		c.Header("Access-Control-Expose-Headers", "ETag, Last-Modified, Link, X-API-Version, X-Request-ID, X-Pagination-Page, X-Pagination-Limit, X-Pagination-Total, X-Pagination-Pages")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware adds a unique request ID to each request.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// SignatureValidator verifies gateway webhook signatures.
type SignatureValidator interface {
	ValidateSignature(xSignature, xRequestID, dataID string) bool
}

// WebhookSecurityMiddleware validates Mercado Pago webhook signatures.
// Notifications with a bad signature are acknowledged with 202 and dropped,
// so the gateway does not keep retrying them.
func WebhookSecurityMiddleware(validator SignatureValidator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if validator == nil {
			// No secret configured (development mode)
			c.Next()
			return
		}

		// Mercado Pago sends these headers for webhook validation:
		// x-signature: ts=timestamp,v1=signature
		// x-request-id: unique request ID
		xSignature := c.GetHeader("x-signature")
		xRequestID := c.GetHeader("x-request-id")

		dataID := c.Query("data.id")
		if dataID == "" {
			var n domain.WebhookNotification
			if err := c.ShouldBindBodyWith(&n, binding.JSON); err == nil {
				dataID = n.Data.ID
			}
		}

		if !validator.ValidateSignature(xSignature, xRequestID, dataID) {
			logger.Warn("dropping webhook with invalid signature",
				zap.String("request_id", xRequestID),
				zap.String("data_id", dataID),
				zap.Error(domain.ErrWebhookValidationFailed))
			respond(c, http.StatusAccepted, webhookAck(c))
			c.Abort()
			return
		}

		c.Next()
	}
}

// ErrorBackstop renders errors left on the context by handlers that did not respond.
func ErrorBackstop(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last()
		logger.Error("unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err.Err))

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		respond(c, status, hateoas.ErrorResponse(err.Error(), "", nil))
	}
}

var standardMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// MethodNotAllowed answers with 405 and an Allow header listing allowed.
func MethodNotAllowed(allowed []string) gin.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(c *gin.Context) {
		c.Header("Allow", allow)
		resp := hateoas.ErrorResponse("Method not allowed", "", nil)
		resp.Code = "METHOD_NOT_ALLOWED"
		resp.Meta = gin.H{"allowedMethods": allowed}
		respond(c, http.StatusMethodNotAllowed, resp)
		c.Abort()
	}
}

func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

func requestContext(c *gin.Context) *hateoas.RequestContext {
	return &hateoas.RequestContext{BaseURL: baseURL(c)}
}
