package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
	"github.com/zerowaste/payment-service/internal/hateoas"
	"github.com/zerowaste/payment-service/internal/platform/simulator"
)

const simulationCSP = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'unsafe-inline' 'self'"

type simulationItem struct {
	Title       string
	Description string
	Quantity    int
	Total       float64
}

type simulationPage struct {
	OrderID    string
	UserID     string
	Status     domain.Status
	Currency   string
	Amount     float64
	Items      []simulationItem
	ProcessURL string
}

// SimulationPage handles GET /api/payment-simulation/:id?orderId=
// It renders the checkout page the simulator gateway points payers at.
func (h *Handler) SimulationPage(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		resp := hateoas.ErrorResponse("orderId is required", "", nil)
		resp.Code = "VALIDATION_ERROR"
		respond(c, http.StatusBadRequest, resp)
		return
	}

	p, err := h.paymentService.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	items := make([]simulationItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, simulationItem{
			Title:       item.Title,
			Description: item.Description,
			Quantity:    item.Quantity,
			Total:       item.Total().InexactFloat64(),
		})
	}

	c.Header("Content-Security-Policy", simulationCSP)
	c.HTML(http.StatusOK, "simulation.html", simulationPage{
		OrderID:    p.OrderID,
		UserID:     p.UserID,
		Status:     p.Status,
		Currency:   p.Currency,
		Amount:     p.Amount,
		Items:      items,
		ProcessURL: simulator.CheckoutPath + "/process",
	})
}

// SimulationRequest represents the JSON body of the process endpoint.
type SimulationRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Action  string `json:"action" binding:"required"`
}

type simulationView struct {
	PaymentID string        `json:"paymentId"`
	OrderID   string        `json:"orderId"`
	Status    domain.Status `json:"status"`
	Message   string        `json:"message"`
}

// ProcessSimulation handles POST /api/payment-simulation/process
func (h *Handler) ProcessSimulation(c *gin.Context) {
	var req SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := hateoas.ErrorResponse("orderId and action are required", err.Error(), nil)
		resp.Code = "VALIDATION_ERROR"
		respond(c, http.StatusBadRequest, resp)
		return
	}

	p, err := h.paymentService.Simulate(c.Request.Context(), req.OrderID, req.Action)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	base := baseURL(c)
	links := []hateoas.Link{
		{Rel: "self", Href: fmt.Sprintf("%s%s/%s", base, simulator.CheckoutPath, p.ID), Method: http.MethodGet},
		{Rel: "payment", Href: fmt.Sprintf("%s%s/%s", base, hateoas.PaymentsPath, p.ID), Method: http.MethodGet},
	}

	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Single(simulationView{
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Status:    p.Status,
			Message:   fmt.Sprintf("Payment %s", p.Status),
		}, hateoas.ResourceRef{ID: p.ID, OrderID: p.OrderID}),
		links,
		"",
		requestContext(c),
		nil,
	))
}

type simulationStatus struct {
	PaymentID string        `json:"paymentId"`
	OrderID   string        `json:"orderId"`
	Status    domain.Status `json:"status"`
	Amount    float64       `json:"amount"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SimulationStatus handles GET /api/payment-simulation/status/:orderId
func (h *Handler) SimulationStatus(c *gin.Context) {
	p, err := h.paymentService.GetByOrderID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Single(simulationStatus{
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Status:    p.Status,
			Amount:    p.Amount,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.LastModified(),
		}, hateoas.ResourceRef{ID: p.ID, OrderID: p.OrderID}),
		hateoas.PaymentLinks(baseURL(c), p.ID),
		"",
		nil,
		nil,
	))
}

// ForceStatusRequest represents the JSON body of the test simulate endpoint.
type ForceStatusRequest struct {
	OrderID  string `json:"orderId" binding:"required"`
	Status   string `json:"status"`
	FCMToken string `json:"fcmToken" binding:"required"`
}

type forceStatusView struct {
	PaymentID        string        `json:"paymentId"`
	OrderID          string        `json:"orderId"`
	Status           domain.Status `json:"status"`
	NotificationSent bool          `json:"notificationSent"`
}

// ForcePaymentStatus handles POST /api/test/simulate-payment
// It sets any status and pushes the outcome to the given device token.
func (h *Handler) ForcePaymentStatus(c *gin.Context) {
	var req ForceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := hateoas.ErrorResponse("orderId and fcmToken are required", err.Error(), nil)
		resp.Code = "VALIDATION_ERROR"
		respond(c, http.StatusBadRequest, resp)
		return
	}

	status := domain.StatusApproved
	if req.Status != "" {
		s, ok := domain.ParseStatus(req.Status)
		if !ok {
			resp := hateoas.ErrorResponse(fmt.Sprintf("invalid status '%s'", req.Status), "", nil)
			resp.Code = "INVALID_STATUS"
			respond(c, http.StatusBadRequest, resp)
			return
		}
		status = s
	}

	p, err := h.paymentService.ForceStatus(c.Request.Context(), req.OrderID, status, req.FCMToken)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.logger.Info("payment status forced",
		zap.String("order_id", p.OrderID),
		zap.String("status", string(p.Status)))

	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Collection(forceStatusView{
			PaymentID:        p.ID,
			OrderID:          p.OrderID,
			Status:           p.Status,
			NotificationSent: true,
		}),
		hateoas.PaymentLinks(baseURL(c), p.ID),
		fmt.Sprintf("Payment status updated to %s", p.Status),
		nil,
		nil,
	))
}

type paymentSummary struct {
	ID        string        `json:"id"`
	OrderID   string        `json:"orderId"`
	Status    domain.Status `json:"status"`
	Amount    float64       `json:"amount"`
	CreatedAt time.Time     `json:"createdAt"`
}

// RecentPayments handles GET /api/test/payments
func (h *Handler) RecentPayments(c *gin.Context) {
	payments, err := h.paymentService.Recent(c.Request.Context(), 10)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	summaries := make([]paymentSummary, 0, len(payments))
	for _, p := range payments {
		summaries = append(summaries, paymentSummary{
			ID:        p.ID,
			OrderID:   p.OrderID,
			Status:    p.Status,
			Amount:    p.Amount,
			CreatedAt: p.CreatedAt,
		})
	}

	respond(c, http.StatusOK, hateoas.NewResponse(
		true,
		hateoas.Collection(summaries),
		hateoas.CollectionLinks(baseURL(c), hateoas.PaymentsPath, nil),
		"",
		nil,
		nil,
	))
}
