package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/hateoas"
)

// RouterConfig selects the optional route groups and middlewares.
type RouterConfig struct {
	GinMode    string
	APIVersion string
	// EnableSimulation mounts the checkout simulation page. Only meaningful
	// with the simulator gateway.
	EnableSimulation bool
	// EnableTestRoutes mounts /api/test. Never set in production.
	EnableTestRoutes bool
	// Validator checks webhook signatures. Nil accepts every webhook.
	Validator SignatureValidator
	Logger    *zap.Logger
}

type endpoint struct {
	method   string
	handlers []gin.HandlerFunc
}

func on(method string, handlers ...gin.HandlerFunc) endpoint {
	return endpoint{method: method, handlers: handlers}
}

// resource registers the endpoints of path and answers every other standard
// method with 405. GET routes also serve HEAD.
func resource(rg gin.IRoutes, path string, endpoints ...endpoint) {
	registered := make(map[string]bool, len(endpoints)+1)
	allowed := make([]string, 0, len(endpoints)+2)

	for _, e := range endpoints {
		rg.Handle(e.method, path, e.handlers...)
		registered[e.method] = true
		allowed = append(allowed, e.method)
		if e.method == http.MethodGet {
			rg.Handle(http.MethodHead, path, e.handlers...)
			registered[http.MethodHead] = true
			allowed = append(allowed, http.MethodHead)
		}
	}
	// Preflight is answered by CORSMiddleware.
	allowed = append(allowed, http.MethodOptions)

	notAllowed := MethodNotAllowed(allowed)
	for _, m := range standardMethods {
		if !registered[m] {
			rg.Handle(m, path, notAllowed)
		}
	}
}

// SetupRouter configures the Gin router with all routes and middleware.
func SetupRouter(handler *Handler, cfg RouterConfig) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := cfg.APIVersion
	if version == "" {
		version = DefaultVersion
	}

	router := gin.New()
	router.SetHTMLTemplate(Templates())

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(ErrorBackstop(logger))
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())

	router.NoRoute(func(c *gin.Context) {
		resp := hateoas.ErrorResponse("Route not found", c.Request.URL.Path, nil)
		resp.Code = "NOT_FOUND"
		respond(c, http.StatusNotFound, resp)
	})

	resource(router, "/health", on(http.MethodGet, handler.Health))
	resource(router, "/api-docs", on(http.MethodGet, handler.APIDocs))

	// RFC 6906 profiles
	profiles := router.Group("/profiles", ContentNegotiation(), CacheHeaders(24*time.Hour), ETag())
	{
		resource(profiles, "/:type", on(http.MethodGet, handler.Profile))
		resource(profiles, "/:type/schema", on(http.MethodGet, handler.ProfileSchema))
	}

	api := router.Group("/api", VersionHeaders(version), ContentNegotiation())
	{
		resource(api, "", on(http.MethodGet, Versioned(map[string]gin.HandlerFunc{
			DefaultVersion: handler.APIRoot,
		})))

		payments := api.Group("/payments")
		{
			noStore := CacheHeaders(0)

			resource(payments, "",
				on(http.MethodGet, Pagination(), CacheHeaders(30*time.Second), ETag(), handler.ListPayments),
				on(http.MethodPost, noStore, handler.CreatePayment),
			)
			resource(payments, "/webhook",
				on(http.MethodPost, noStore, WebhookSecurityMiddleware(cfg.Validator, logger), handler.HandleWebhook),
			)
			resource(payments, "/order/:orderId",
				on(http.MethodGet, CacheHeaders(time.Minute), ETag(), LastModified(handler.orderLastModified), handler.GetPaymentByOrderID),
			)
			resource(payments, "/user/:userId",
				on(http.MethodGet, Pagination(), CacheHeaders(30*time.Second), ETag(), handler.ListUserPayments),
			)
			resource(payments, "/:id",
				on(http.MethodGet, CacheHeaders(time.Minute), ETag(), LastModified(handler.paymentLastModified), handler.GetPayment),
			)
			resource(payments, "/:id/cancel", on(http.MethodPost, noStore, handler.CancelPayment))
			resource(payments, "/:id/refund", on(http.MethodPost, noStore, handler.RefundPayment))
		}

		if cfg.EnableSimulation {
			simulation := api.Group("/payment-simulation")
			{
				resource(simulation, "/process", on(http.MethodPost, handler.ProcessSimulation))
				resource(simulation, "/status/:orderId", on(http.MethodGet, handler.SimulationStatus))
				resource(simulation, "/:id", on(http.MethodGet, handler.SimulationPage))
			}
		}

		if cfg.EnableTestRoutes {
			test := api.Group("/test")
			{
				resource(test, "/simulate-payment", on(http.MethodPost, handler.ForcePaymentStatus))
				resource(test, "/payments", on(http.MethodGet, handler.RecentPayments))
			}
		}
	}

	return router
}
