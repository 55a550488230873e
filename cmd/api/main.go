package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/gastrolink/mesa-api/internal/application/service"
	"github.com/gastrolink/mesa-api/internal/config"
	"github.com/gastrolink/mesa-api/internal/infrastructure/database"
	"github.com/gastrolink/mesa-api/internal/infrastructure/repository"
	"github.com/gastrolink/mesa-api/internal/presentation/http/handler"
	"github.com/gastrolink/mesa-api/internal/presentation/http/routes"
	"github.com/gastrolink/mesa-api/pkg/catalog"
	"github.com/gastrolink/mesa-api/pkg/documents"
	"github.com/gastrolink/mesa-api/pkg/payments"
	"github.com/gastrolink/mesa-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	establishmentRepo := repository.NewEstablishmentRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	divisionRepo := repository.NewDivisionRepository(db)
	shiftRepo := repository.NewCashShiftRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	uow := repository.NewUnitOfWork(db)

	// External collaborators. Development keeps the external services out
	// of the loop: charges auto-approve and documents are not rendered.
	var (
		menuCatalog     catalog.Catalog
		paymentGateway  payments.Gateway
		invoiceRenderer documents.Renderer
	)
	if cfg.App.Env == "development" {
		menuCatalog = catalog.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
		paymentGateway = payments.NewApproveAllGateway()
		invoiceRenderer = documents.NewNullRenderer()
	} else {
		menuCatalog = catalog.NewHTTPCatalog(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
		paymentGateway = payments.NewHTTPGateway(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, cfg.Gateway.Timeout)
		invoiceRenderer = documents.NewHTTPRenderer(cfg.Documents.BaseURL, cfg.Documents.Timeout)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	establishmentService := service.NewEstablishmentService(establishmentRepo)
	orderService := service.NewOrderService(orderRepo, orderItemRepo, menuCatalog)
	shiftService := service.NewCashShiftService(shiftRepo)
	invoiceService := service.NewInvoiceService(invoiceRepo, orderRepo, uow, invoiceRenderer)
	settlementService := service.NewSettlementService(
		orderRepo,
		divisionRepo,
		shiftRepo,
		establishmentRepo,
		invoiceService,
		shiftService,
		paymentGateway,
		uow,
		cfg.Settlement.MaxRetries,
	)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Establishment: handler.NewEstablishmentHandler(establishmentService),
		Order:         handler.NewOrderHandler(orderService),
		Shift:         handler.NewShiftHandler(shiftService),
		Settlement:    handler.NewSettlementHandler(settlementService),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
