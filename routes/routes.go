package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tennis_club_backend/billing"
	"tennis_club_backend/handlers"
	"tennis_club_backend/middleware"
)

// Backend is the storage the HTTP layer runs on.
type Backend interface {
	billing.Store
	middleware.ClubRoleLookup
	handlers.RateStore
	handlers.RegisterLister
	handlers.Pinger
}

type Options struct {
	JWTSecret    []byte
	BatchWorkers int
	Notifier     billing.Notifier
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, backend Backend, opts Options, logger *zap.Logger) {
	aggregator := billing.NewAggregator(backend, logger)
	batch := billing.NewBatchGenerator(aggregator, opts.BatchWorkers)
	lifecycle := billing.NewLifecycle(backend, opts.Notifier, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(backend, logger)
	authHandler := handlers.NewAuthHandler()
	invoiceHandler := handlers.NewInvoiceHandler(aggregator, batch, lifecycle, logger)
	rateHandler := handlers.NewRateHandler(backend, logger)
	registerHandler := handlers.NewRegisterHandler(backend, logger)

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(backend, opts.JWTSecret, logger))
	{
		// User info route
		protected.GET("/userinfo", authHandler.GetUserInfo)

		// Invoice generation
		protected.POST("/invoices/generate", invoiceHandler.GenerateInvoice)
		protected.POST("/clubs/:club_id/invoices/generate", invoiceHandler.GenerateClubInvoices)

		// Invoice lifecycle
		protected.GET("/invoices/:id", invoiceHandler.GetInvoice)
		protected.POST("/invoices/:id/submit", invoiceHandler.SubmitInvoice)
		protected.POST("/invoices/:id/approve", invoiceHandler.ApproveInvoice)
		protected.POST("/invoices/:id/reject", invoiceHandler.RejectInvoice)
		protected.POST("/invoices/:id/mark-paid", invoiceHandler.MarkInvoicePaid)

		// Line items
		protected.POST("/invoices/:id/line-items", invoiceHandler.AddLineItem)
		protected.PUT("/invoices/:id/line-items/:item_id", invoiceHandler.UpdateLineItem)
		protected.DELETE("/invoices/:id/line-items/:item_id", invoiceHandler.DeleteLineItem)

		// Rate routes
		protected.GET("/rates", rateHandler.GetRates)
		protected.POST("/rates", rateHandler.UpsertRate)

		// Register routes
		protected.GET("/registers", registerHandler.GetRegisters)
	}
}
