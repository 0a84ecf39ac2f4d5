package router

import (
	"time"

	"bizledger/internal/config"
	"bizledger/internal/events"
	"bizledger/internal/handler"
	"bizledger/internal/infra"
	"bizledger/internal/middleware"
	"bizledger/internal/repository"
	"bizledger/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, publisher events.Publisher, receipts service.ReceiptQueue, mailerCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.NewRateLimiter(1000, time.Minute).Handler()) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	creditRepo := repository.NewCreditTransactionRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	ledgerSvc := service.NewLedgerService(accountRepo, txnRepo, auditRepo, publisher)
	inventorySvc := service.NewInventoryService(productRepo, movementRepo, auditRepo)
	customerSvc := service.NewCustomerService(customerRepo, creditRepo, auditRepo)

	tax := service.TaxPolicy{
		RatePct:   decimal.NewFromFloat(cfg.TaxRatePct),
		Inclusive: cfg.TaxInclusive,
	}
	saleSvc := service.NewSaleService(saleRepo, productRepo, accountRepo, txnRepo, returnRepo, auditRepo,
		ledgerSvc, inventorySvc, customerSvc, customerRepo, receipts, tax)
	returnSvc := service.NewReturnService(returnRepo, saleRepo, accountRepo, auditRepo,
		ledgerSvc, inventorySvc, customerSvc)
	reportSvc := service.NewReportService(txnRepo, saleRepo, productRepo, customerRepo,
		decimal.NewFromFloat(cfg.VIPCLVThreshold))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	ledgerH := handler.NewLedgerHandler(ledgerSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	salesH := handler.NewSalesHandler(saleSvc, returnSvc)
	reportsH := handler.NewReportsHandler(reportSvc)
	auditH := handler.NewAuditHandler(auditRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailerCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.NewLoginRateLimiter().Handler(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, manager, admin — declared per-endpoint
		anyRole := middleware.RequireRole("cashier", "manager", "admin")
		managerUp := middleware.RequireRole("manager", "admin")
		adminOnly := middleware.RequireRole("admin")

		// Accounts
		v1.GET("/accounts", anyRole, ledgerH.ListAccounts)
		v1.GET("/accounts/:id", anyRole, ledgerH.GetAccount)
		v1.POST("/accounts", adminOnly, ledgerH.CreateAccount)
		v1.PUT("/accounts/:id", adminOnly, ledgerH.UpdateAccount)

		// Transactions
		v1.POST("/transactions", managerUp, ledgerH.RecordTransaction)
		v1.GET("/transactions", managerUp, ledgerH.ListTransactions)
		v1.GET("/transactions/:id", managerUp, ledgerH.GetTransaction)

		// Products — everyone reads (catalog), admin writes
		v1.GET("/products", anyRole, inventoryH.ListProducts)
		v1.GET("/products/:id", anyRole, inventoryH.GetProduct)
		v1.POST("/products/:id/stock", managerUp, inventoryH.AdjustStock)
		prods := v1.Group("/products", adminOnly)
		{
			prods.POST("", inventoryH.CreateProduct)
			prods.PUT("/:id", inventoryH.UpdateProduct)
			prods.DELETE("/:id", inventoryH.DeactivateProduct)
			prods.POST("/:id/reactivate", inventoryH.ReactivateProduct)
		}

		// Inventory
		v1.GET("/stock-movements", managerUp, inventoryH.ListMovements)
		v1.GET("/inventory/low-stock", anyRole, inventoryH.LowStockAlerts)

		// Customers
		v1.GET("/customers", anyRole, customersH.ListCustomers)
		v1.GET("/customers/:id", anyRole, customersH.GetCustomer)
		v1.POST("/customers", anyRole, customersH.CreateCustomer)
		v1.PUT("/customers/:id", managerUp, customersH.UpdateCustomer)
		v1.DELETE("/customers/:id", adminOnly, customersH.DeactivateCustomer)
		v1.POST("/customers/:id/credit", managerUp, customersH.AdjustCredit)
		v1.GET("/customers/:id/credit", anyRole, customersH.CreditHistory)

		// Sales
		v1.POST("/sales", anyRole, salesH.Checkout)
		v1.GET("/sales", anyRole, salesH.ListSales)
		v1.GET("/sales/:id", anyRole, salesH.GetSale)
		v1.POST("/sales/:id/void", managerUp, salesH.VoidSale)
		v1.GET("/sales/:id/returns", anyRole, salesH.ListSaleReturns)

		// Returns
		v1.POST("/returns", managerUp, salesH.ProcessReturn)
		v1.GET("/returns/:id", managerUp, salesH.GetReturn)

		// Reports
		reports := v1.Group("/reports", managerUp)
		{
			reports.GET("/daily-summary", reportsH.DailySummary)
			reports.GET("/profit-loss", reportsH.ProfitAndLoss)
			reports.GET("/cash-flow", reportsH.CashFlow)
			reports.GET("/stock-value", reportsH.StockValue)
			reports.GET("/customer-segments", reportsH.CustomerSegments)
		}

		// Audit trail
		v1.GET("/audit-log", adminOnly, auditH.List)

		// Users
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.POST("/:id/reactivate", authH.ReactivateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
