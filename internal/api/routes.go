package api

import (
	"payment-relay/internal/config"
	"payment-relay/internal/middleware"
	"payment-relay/internal/services"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with middleware and all routes
func NewRouter(cfg *config.Config, service *services.TransactionService) *gin.Engine {
	development := cfg.IsDevelopment()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		middleware.RequestID(),
		gin.Logger(),
		middleware.Recovery(development),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.ErrorHandler(development),
	)
	r.NoRoute(middleware.NoRoute)
	r.NoMethod(middleware.NoMethod)

	SetupRoutes(r, NewHandler(service), middleware.APIKeyAuth(cfg.APIKey))
	return r
}

// SetupRoutes sets up all routes; auth guards the stored-document lookup
func SetupRoutes(r *gin.Engine, h *Handler, auth gin.HandlerFunc) {
	// Health check
	r.GET("/health", h.Health)

	// Client API
	r.POST("/snap-token", h.CreateSnapToken)
	r.GET("/check/:orderId", h.CheckTransaction)
	r.GET("/transactions/:orderId", auth, h.GetTransaction)

	// Midtrans payment notifications (no authentication, Midtrans calls this)
	r.POST("/midtrans-webhook", h.MidtransWebhook)
}
