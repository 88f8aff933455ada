// Package api contains the HTTP handlers and routing for the payment service.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/hateoas"
	"github.com/zerowaste/payment-service/internal/pagination"
	"github.com/zerowaste/payment-service/internal/payment"
)

// WebhookQueue accepts notifications for processing after the response.
type WebhookQueue interface {
	Submit(n domain.WebhookNotification) bool
	Stats() payment.DispatcherStats
}

// Handler contains the HTTP handlers for the payment API.
type Handler struct {
	paymentService *payment.Service
	webhooks       WebhookQueue
	apiVersion     string
	logger         *zap.Logger
}

// NewHandler creates a new API handler with the payment service.
func NewHandler(paymentService *payment.Service, webhooks WebhookQueue, apiVersion string, logger *zap.Logger) *Handler {
	return &Handler{
		paymentService: paymentService,
		webhooks:       webhooks,
		apiVersion:     apiVersion,
		logger:         logger.With(zap.String("component", "api")),
	}
}

// CreatePaymentRequest represents the JSON body for the create endpoint.
type CreatePaymentRequest struct {
	UserID      string        `json:"userId" binding:"required"`
	OrderID     string        `json:"orderId"`
	Items       []domain.Item `json:"items" binding:"required"`
	Payer       *domain.Payer `json:"payer" binding:"required"`
	CallbackURL string        `json:"callbackUrl"`
}

// CreatePayment handles POST /api/payments
// Stores a pending payment and returns the checkout URL.
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := hateoas.ErrorResponse("userId, items and payer are required", err.Error(), nil)
		resp.Code = "VALIDATION_ERROR"
		respond(c, http.StatusBadRequest, resp)
		return
	}

	result, err := h.paymentService.Create(c.Request.Context(), payment.CreateRequest{
		UserID:      req.UserID,
		OrderID:     req.OrderID,
		Items:       req.Items,
		Payer:       req.Payer,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	ref := hateoas.ResourceRef{ID: result.PaymentID, UserID: req.UserID, OrderID: result.OrderID, ItemCount: len(req.Items)}
	respond(c, http.StatusCreated, hateoas.NewResponse(
		true,
		hateoas.Single(result, ref),
		hateoas.PaymentLinks(baseURL(c), result.PaymentID),
		"Payment created successfully",
		requestContext(c),
		nil,
	))
}

// GetPayment handles GET /api/payments/:id
func (h *Handler) GetPayment(c *gin.Context) {
	p, err := h.paymentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondPayment(c, p)
}

// GetPaymentByOrderID handles GET /api/payments/order/:orderId
func (h *Handler) GetPaymentByOrderID(c *gin.Context) {
	p, err := h.paymentService.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondPayment(c, p)
}

func (h *Handler) respondPayment(c *gin.Context, p *domain.Payment) {
	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Single(p, paymentRef(p)),
		hateoas.PaymentLinks(baseURL(c), p.ID),
		"",
		requestContext(c),
		nil,
	))
}

func paymentRef(p *domain.Payment) hateoas.ResourceRef {
	return hateoas.ResourceRef{ID: p.ID, UserID: p.UserID, OrderID: p.OrderID, ItemCount: len(p.Items)}
}

// paymentLastModified feeds Last-Modified on GET /api/payments/:id.
func (h *Handler) paymentLastModified(c *gin.Context) (time.Time, error) {
	p, err := h.paymentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return time.Time{}, err
	}
	return p.LastModified(), nil
}

// orderLastModified feeds Last-Modified on GET /api/payments/order/:orderId.
func (h *Handler) orderLastModified(c *gin.Context) (time.Time, error) {
	p, err := h.paymentService.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		return time.Time{}, err
	}
	return p.LastModified(), nil
}

type paymentWithLinks struct {
	domain.Payment
	Links []hateoas.Link `json:"_links"`
}

type paymentListing struct {
	Payments []paymentWithLinks `json:"payments"`
	Meta     pagination.Meta    `json:"_meta"`
}

// ListPayments handles GET /api/payments
func (h *Handler) ListPayments(c *gin.Context) {
	page := pageParams(c)

	payments, total, err := h.paymentService.List(c.Request.Context(), domain.PageRequest{
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	base := baseURL(c)
	info := pagination.Calculate(total, page.Page, page.Limit, base+hateoas.PaymentsPath)
	setPaginationHeaders(c, info)

	listing := paymentListing{
		Payments: make([]paymentWithLinks, 0, len(payments)),
		Meta:     info.Meta,
	}
	for _, p := range payments {
		listing.Payments = append(listing.Payments, paymentWithLinks{
			Payment: p,
			Links:   hateoas.PaymentLinks(base, p.ID),
		})
	}

	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Collection(listing),
		hateoas.FromPagination(info.Links),
		"",
		requestContext(c),
		nil,
	))
}

type userPaymentView struct {
	PaymentID  string        `json:"paymentId"`
	OrderID    string        `json:"orderId"`
	UserID     string        `json:"userId"`
	Status     domain.Status `json:"status"`
	Amount     float64       `json:"amount"`
	Items      []domain.Item `json:"items"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	PaymentURL string        `json:"paymentUrl,omitempty"`
}

type userListingPage struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

type userListingFilters struct {
	Status    string  `json:"status"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

type userListingMeta struct {
	Pagination userListingPage         `json:"pagination"`
	Stats      map[domain.Status]int64 `json:"stats"`
	Filters    userListingFilters      `json:"filters"`
}

// ListUserPayments handles GET /api/payments/user/:userId
// Stats count every payment of the user, whatever the filters.
func (h *Handler) ListUserPayments(c *gin.Context) {
	userID := c.Param("userId")
	status := c.Query("status")
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")

	filter, err := payment.ParseUserFilter(userID, status, startDate, endDate)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	page := pageParams(c)
	listing, err := h.paymentService.ListByUser(c.Request.Context(), filter, domain.PageRequest{
		Offset: page.Offset(),
		Limit:  page.Limit,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	base := baseURL(c)
	rc := requestContext(c)

	items := make([]hateoas.Response, 0, len(listing.Payments))
	for i := range listing.Payments {
		p := &listing.Payments[i]
		view := userPaymentView{
			PaymentID:  p.ID,
			OrderID:    p.OrderID,
			UserID:     p.UserID,
			Status:     p.Status,
			Amount:     p.Amount,
			Items:      p.Items,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
			PaymentURL: p.PaymentURL,
		}
		items = append(items, hateoas.NewResponse(
			true,
			hateoas.Single(view, paymentRef(p)),
			hateoas.PaymentLinks(base, p.ID),
			"Payment details",
			rc,
			nil,
		))
	}

	totalPages := pagination.Calculate(listing.Total, page.Page, page.Limit, "").Meta.TotalPages
	meta := userListingMeta{
		Pagination: userListingPage{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      listing.Total,
			TotalPages: totalPages,
			HasNext:    page.Page < totalPages,
			HasPrev:    page.Page > 1,
		},
		Stats:   listing.Stats,
		Filters: userListingFilters{Status: "all", StartDate: optional(startDate), EndDate: optional(endDate)},
	}
	if status != "" {
		meta.Filters.Status = status
	}

	links := userListingLinks(base+c.Request.URL.Path, page, status, startDate, endDate, meta.Pagination)

	h.logger.Info("user payments listed",
		zap.String("user_id", userID),
		zap.Int("count", len(items)),
		zap.Int64("total", listing.Total))

	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Collection(items),
		links,
		fmt.Sprintf("%d payments found for the user", len(items)),
		rc,
		meta,
	))
}

func userListingLinks(href string, page pagination.Params, status, startDate, endDate string, state userListingPage) []hateoas.Link {
	withFilters := func(p int) string {
		s := fmt.Sprintf("%s?page=%d&limit=%d", href, p, page.Limit)
		if status != "" {
			s += "&status=" + status
		}
		if startDate != "" {
			s += "&startDate=" + startDate
		}
		if endDate != "" {
			s += "&endDate=" + endDate
		}
		return s
	}

	links := []hateoas.Link{
		{Rel: "self", Href: withFilters(page.Page), Method: http.MethodGet, Title: "This page"},
		{Rel: "all-payments", Href: fmt.Sprintf("%s?page=1&limit=%d", href, page.Limit), Method: http.MethodGet, Title: "All payments of the user"},
	}
	if state.HasPrev {
		links = append(links, hateoas.Link{Rel: "prev", Href: withFilters(page.Page - 1), Method: http.MethodGet, Title: "Previous page"})
	}
	if state.HasNext {
		links = append(links, hateoas.Link{Rel: "next", Href: withFilters(page.Page + 1), Method: http.MethodGet, Title: "Next page"})
	}
	for _, s := range domain.Statuses {
		links = append(links, hateoas.Link{
			Rel:    "filter-" + string(s),
			Href:   fmt.Sprintf("%s?status=%s&page=1&limit=%d", href, s, page.Limit),
			Method: http.MethodGet,
			Title:  fmt.Sprintf("%s payments", s),
		})
	}
	return links
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type transitionView struct {
	PaymentID string        `json:"paymentId"`
	OrderID   string        `json:"orderId"`
	Status    domain.Status `json:"status"`
}

// CancelPayment handles POST /api/payments/:id/cancel
func (h *Handler) CancelPayment(c *gin.Context) {
	p, err := h.paymentService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondTransition(c, p, "Payment cancelled successfully")
}

// RefundPayment handles POST /api/payments/:id/refund
func (h *Handler) RefundPayment(c *gin.Context) {
	p, err := h.paymentService.Refund(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.respondTransition(c, p, "Payment refunded successfully")
}

func (h *Handler) respondTransition(c *gin.Context, p *domain.Payment, message string) {
	view := transitionView{PaymentID: p.ID, OrderID: p.OrderID, Status: p.Status}
	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Single(view, hateoas.ResourceRef{ID: p.ID, OrderID: p.OrderID}),
		hateoas.PaymentLinks(baseURL(c), p.ID),
		message,
		requestContext(c),
		nil,
	))
}

// HandleWebhook handles POST /api/payments/webhook
// The notification is acknowledged with 202 before it is processed;
// processing failures only show up in the logs.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var n domain.WebhookNotification
	if err := c.ShouldBindBodyWith(&n, binding.JSON); err != nil {
		// Gateways might send different formats, log and accept
		h.logger.Warn("webhook parsing error", zap.Error(err))
		respond(c, http.StatusAccepted, webhookAck(c))
		return
	}

	respond(c, http.StatusAccepted, webhookAck(c))

	if !h.webhooks.Submit(n) {
		h.logger.Error("webhook dropped",
			zap.String("type", n.Type),
			zap.String("data_id", n.Data.ID),
			zap.String("order_id", n.Data.OrderID))
	}
}

func webhookAck(c *gin.Context) hateoas.Response {
	return hateoas.NewResponse(
		true,
		hateoas.Empty(),
		[]hateoas.Link{{Rel: "payments", Href: baseURL(c) + hateoas.PaymentsPath, Method: http.MethodGet}},
		"Notification received and will be processed",
		requestContext(c),
		nil,
	)
}

// APIRoot handles GET /api
func (h *Handler) APIRoot(c *gin.Context) {
	base := baseURL(c)
	c.JSON(http.StatusOK, gin.H{
		"name":    "Payments API",
		"version": h.apiVersion,
		"_links": []hateoas.Link{
			{Rel: "payments", Href: base + hateoas.PaymentsPath, Method: http.MethodGet, Title: "List payments"},
			{Rel: "create-payment", Href: base + hateoas.PaymentsPath, Method: http.MethodPost, Title: "Create a payment"},
			{Rel: "health", Href: base + "/health", Method: http.MethodGet, Title: "Service health"},
			{Rel: "api-docs", Href: base + "/api-docs", Method: http.MethodGet, Title: "API documentation"},
		},
	})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   "payment-service",
		"timestamp": time.Now().UTC(),
		"webhooks":  h.webhooks.Stats(),
	})
}

var serviceErrors = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{domain.ErrPaymentNotFound, http.StatusNotFound, "NOT_FOUND", "Payment not found"},
	{domain.ErrInvalidPayment, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payment data"},
	{domain.ErrDuplicateOrder, http.StatusBadRequest, "DUPLICATE_ORDER", "Order already has a payment"},
	{domain.ErrInvalidTransition, http.StatusBadRequest, "INVALID_TRANSITION", "Invalid status transition"},
	{domain.ErrInvalidFilter, http.StatusBadRequest, "INVALID_FILTER", "Invalid filter"},
	{domain.ErrUnsupportedAction, http.StatusBadRequest, "INVALID_ACTION", "Unsupported action"},
}

// handleServiceError maps domain errors to HTTP responses.
func (h *Handler) handleServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "Internal server error"

	for _, known := range serviceErrors {
		if errors.Is(err, known.err) {
			status, code, message = known.status, known.code, known.message
			break
		}
	}

	var paymentErr *domain.PaymentError
	if errors.As(err, &paymentErr) {
		message = paymentErr.Message
		if paymentErr.Code != "" {
			code = paymentErr.Code
		}
	}

	detail := ""
	if status == http.StatusInternalServerError {
		detail = err.Error()
		logFields := []zap.Field{
			zap.String("path", c.Request.URL.Path),
			zap.String("code", code),
			zap.Error(err),
		}
		if requestID, ok := c.Get("request_id"); ok {
			logFields = append(logFields, zap.Any("request_id", requestID))
		}
		h.logger.Error("request failed", logFields...)
	}

	resp := hateoas.ErrorResponse(message, detail, nil)
	resp.Code = code
	respond(c, status, resp)
}
