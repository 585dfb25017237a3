package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/application/reporting"
	"github.com/jhoicas/Rentabodega-api/internal/application/usecase"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName        string
	CompanyUC      *usecase.CompanyUseCase
	WarehouseUC    *usecase.WarehouseUseCase
	RateScheduleUC *usecase.RateScheduleUseCase
	CommodityUC    *usecase.CommodityUseCase
	CustomerUC     *billing.CustomerUseCase
	PaymentUC      *billing.PaymentUseCase
	StatementUC    *billing.StatementUseCase
	LotUC          *ledger.LotUseCase
	WithdrawalUC   *ledger.WithdrawalUseCase
	OccupancyUC    *reporting.OccupancyUseCase
	AIUC           *usecase.AIUseCase
	ModuleService  moduleChecker
	Metrics        http.Handler // nil = sin /metrics
	JWTSecret      string
	JWTIssuer      string
	Log            zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Todas las rutas de /api requieren Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	write := RequireRole(entity.RoleAdmin, entity.RoleOperator)
	module := func(name string) fiber.Handler { return RequireModule(name, deps.ModuleService, deps.Log) }

	// Companies (solo admin)
	companies := api.Group("/companies", RequireRole(entity.RoleAdmin))
	companyHandler := NewCompanyHandler(deps.CompanyUC)
	companies.Post("/", companyHandler.Create)
	companies.Get("/", companyHandler.List)
	companies.Get("/:id", companyHandler.GetByID)

	storage := module(entity.ModuleStorage)

	// Warehouses + tarifa
	warehouses := api.Group("/warehouses", storage)
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC, deps.RateScheduleUC)
	warehouses.Post("/", write, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", write, warehouseHandler.Update)
	warehouses.Delete("/:id", write, warehouseHandler.Delete)
	warehouses.Put("/:id/rate-schedule", write, warehouseHandler.PutRateSchedule)
	warehouses.Get("/:id/rate-schedule", warehouseHandler.GetRateSchedule)

	// Commodities
	commodities := api.Group("/commodities", storage)
	commodityHandler := NewCommodityHandler(deps.CommodityUC)
	commodities.Post("/", write, commodityHandler.Create)
	commodities.Get("/", commodityHandler.List)

	// Lots (entradas)
	lots := api.Group("/lots", storage)
	lotHandler := NewLotHandler(deps.LotUC)
	lots.Post("/", write, lotHandler.Create)
	lots.Get("/open", lotHandler.ListOpen)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Get("/:id/rent", lotHandler.Rent)
	lots.Get("/:id/movements", lotHandler.Movements)
	lots.Delete("/:id", write, lotHandler.Void)

	// Withdrawals (salidas)
	withdrawals := api.Group("/withdrawals", storage)
	withdrawalHandler := NewWithdrawalHandler(deps.WithdrawalUC, deps.StatementUC)
	withdrawals.Post("/", write, withdrawalHandler.Create)
	withdrawals.Post("/preview", withdrawalHandler.Preview)
	withdrawals.Get("/", withdrawalHandler.List)
	withdrawals.Get("/:id/receipt.pdf", withdrawalHandler.ReceiptPDF)
	withdrawals.Get("/:id", withdrawalHandler.GetByID)

	billingModule := module(entity.ModuleBilling)

	// Customers: alta y consulta con storage; estado de cuenta con billing
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.StatementUC)
	customers.Post("/", storage, write, customerHandler.Create)
	customers.Get("/", storage, customerHandler.List)
	customers.Get("/:id/statement.pdf", billingModule, customerHandler.StatementPDF)
	customers.Get("/:id/statement", billingModule, customerHandler.Statement)
	customers.Get("/:id", storage, customerHandler.GetByID)

	// Payments
	payments := api.Group("/payments", billingModule)
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	payments.Post("/", write, paymentHandler.Create)

	// Reports
	reports := api.Group("/reports", module(entity.ModuleReports))
	reportHandler := NewReportHandler(deps.OccupancyUC)
	reports.Get("/occupancy", reportHandler.Occupancy)

	// AI
	ai := api.Group("/ai", module(entity.ModuleAI))
	aiHandler := NewAIHandler(deps.AIUC)
	ai.Post("/anomalies", aiHandler.DetectAnomalies)
}
