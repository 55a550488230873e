package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gastrolink/mesa-api/internal/config"
	domainRepo "github.com/gastrolink/mesa-api/internal/domain/repository"
	"github.com/gastrolink/mesa-api/internal/presentation/http/handler"
	"github.com/gastrolink/mesa-api/internal/presentation/http/middleware"
	"github.com/gastrolink/mesa-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth          *handler.AuthHandler
	Establishment *handler.EstablishmentHandler
	Order         *handler.OrderHandler
	Shift         *handler.ShiftHandler
	Settlement    *handler.SettlementHandler
	Invoice       *handler.InvoiceHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-establishment rate limiter
		rateLimiter := middleware.NewEstablishmentRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Profile
	protected.GET("/profile", h.Auth.GetProfile)

	// Establishment
	registerEstablishmentRoutes(protected, h)

	// Orders, kitchen progress and settlement
	registerOrderRoutes(protected, h, deps)

	// Cash shifts
	registerShiftRoutes(protected, h, deps)

	// Invoices
	registerInvoiceRoutes(protected, h)
}

func registerEstablishmentRoutes(protected *gin.RouterGroup, h *Handlers) {
	establishment := protected.Group("/establishment")
	{
		establishment.GET("", h.Establishment.GetCurrent)
		establishment.PUT("/settings", middleware.RequireRole("admin"), h.Establishment.UpdateSettings)
	}
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	orders := protected.Group("/orders")
	{
		orders.GET("", h.Order.List)
		orders.POST("", h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/items", h.Order.AddItem)
		orders.PUT("/:id/items/:itemId", h.Order.UpdateItem)
		orders.DELETE("/:id/items/:itemId", h.Order.RemoveItem)
		orders.PUT("/:id/items/:itemId/kitchen-state", h.Order.SetItemKitchenState)
		orders.PUT("/:id/discount", h.Order.SetDiscount)
		orders.POST("/:id/close", h.Order.Close)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.GET("/:id/invoices", h.Invoice.ListForOrder)
		// Settlement moves money; a retried POST must not settle twice
		orders.POST("/:id/settlements", middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Settlement.Settle)
	}
}

func registerShiftRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	shifts := protected.Group("/shifts")
	{
		shifts.GET("", h.Shift.List)
		shifts.POST("", idempotent, h.Shift.Open)
		shifts.GET("/current", h.Shift.GetCurrent)
		shifts.POST("/expenses", h.Shift.RecordExpense)
		shifts.GET("/:id", h.Shift.Get)
		shifts.POST("/:id/close", idempotent, h.Shift.Close)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers) {
	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.POST("/:id/retry-submission", h.Invoice.RetrySubmission)
		invoices.POST("/retry-submissions", middleware.RequireRole("admin"), h.Invoice.RetryFailedSubmissions)
	}
}
