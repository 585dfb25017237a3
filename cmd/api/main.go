package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
	"github.com/jhoicas/Rentabodega-api/internal/application/reporting"
	"github.com/jhoicas/Rentabodega-api/internal/application/usecase"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
	infraai "github.com/jhoicas/Rentabodega-api/internal/infrastructure/ai"
	infraamqp "github.com/jhoicas/Rentabodega-api/internal/infrastructure/amqp"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Rentabodega-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Rentabodega-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/Rentabodega-api/internal/interfaces/http"
	"github.com/jhoicas/Rentabodega-api/pkg/config"
	"github.com/jhoicas/Rentabodega-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// repos conjunto de repositorios del backend elegido (postgres o memoria).
type repos struct {
	tx          ledger.TxRunner
	companies   repository.CompanyRepository
	customers   repository.CustomerRepository
	warehouses  repository.WarehouseRepository
	commodities repository.CommodityRepository
	lots        repository.LotRepository
	withdrawals repository.WithdrawalRepository
	rates       repository.RateScheduleRepository
	payments    repository.PaymentRepository
	reports     repository.ReportRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Ledger.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var r repos
	switch cfg.Ledger.Store {
	case config.StoreMemory:
		log.Warn().Msg("usando store en memoria: los datos se pierden al reiniciar")
		r = memoryRepos(memory.NewStore())
	default:
		if cfg.DB.MigrateOnStart {
			if err := postgres.Migrate(cfg.DB.ConnectionString(), log.Component("migrate")); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		r = repos{
			tx:          postgres.NewTxRunner(pool),
			companies:   postgres.NewCompanyRepository(pool),
			customers:   postgres.NewCustomerRepository(pool),
			warehouses:  postgres.NewWarehouseRepository(pool),
			commodities: postgres.NewCommodityRepository(pool),
			lots:        postgres.NewLotRepository(pool),
			withdrawals: postgres.NewWithdrawalRepository(pool),
			rates:       postgres.NewRateScheduleRepository(pool),
			payments:    postgres.NewPaymentRepository(pool),
			reports:     postgres.NewReportRepository(pool),
		}
	}

	// Guard de idempotencia: sin Redis queda solo el índice único de request_id.
	var guard ports.IdempotencyGuard = ports.NoopGuard{}
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, guard deshabilitado")
		} else {
			defer client.Close()
			guard = infraredis.NewIdempotencyGuard(client, 0)
		}
	}

	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if cfg.AMQP.Enabled() {
		p, err := infraamqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log.Component("amqp"))
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ no disponible, eventos deshabilitados")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	ledgerMetrics := metrics.NewLedgerMetrics()
	refs := ledger.References{Customers: r.customers, Commodities: r.commodities, Warehouses: r.warehouses}

	lotUC := ledger.NewLotUseCase(r.lots, r.rates, r.withdrawals, refs, publisher, ledgerMetrics, log.Zerolog())
	withdrawalUC := ledger.NewWithdrawalUseCase(
		r.tx, r.lots, r.withdrawals, r.rates, refs,
		guard, publisher, ledgerMetrics, cfg.Ledger.MaxConflictRetries, log.Zerolog(),
	)

	// PDF: comprobantes de retiro y estados de cuenta
	statementUC := billing.NewStatementUseCase(billing.StatementDeps{
		Customers:   r.customers,
		Companies:   r.companies,
		Warehouses:  r.warehouses,
		Commodities: r.commodities,
		Lots:        r.lots,
		Withdrawals: r.withdrawals,
		Payments:    r.payments,
		Rates:       r.rates,
		Generator:   infrapdf.NewMarotoPDFGenerator(),
	}, log.Zerolog())

	aiUC := usecase.NewAIUseCase(llmService(cfg.AI, log), r.withdrawals)

	accrual := reporting.NewAccrualJob(r.reports, r.lots, r.rates, log.Zerolog())
	if cfg.Jobs.AccrualCron != "" {
		if err := accrual.Start(cfg.Jobs.AccrualCron); err != nil {
			log.Fatal().Err(err).Msg("job de causación")
		}
		defer accrual.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Rentabodega API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:        cfg.App.Name,
		CompanyUC:      usecase.NewCompanyUseCase(r.companies),
		WarehouseUC:    usecase.NewWarehouseUseCase(r.warehouses),
		RateScheduleUC: usecase.NewRateScheduleUseCase(r.rates, r.warehouses, log.Zerolog()),
		CommodityUC:    usecase.NewCommodityUseCase(r.commodities),
		CustomerUC:     billing.NewCustomerUseCase(r.customers),
		PaymentUC:      billing.NewPaymentUseCase(r.payments, r.customers, log.Zerolog()),
		StatementUC:    statementUC,
		LotUC:          lotUC,
		WithdrawalUC:   withdrawalUC,
		OccupancyUC:    reporting.NewOccupancyUseCase(r.reports),
		AIUC:           aiUC,
		ModuleService:  usecase.NewModuleService(r.companies),
		Metrics:        ledgerMetrics.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		Log:            log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func memoryRepos(s *memory.Store) repos {
	return repos{
		tx:          s,
		companies:   s.Companies(),
		customers:   s.Customers(),
		warehouses:  s.Warehouses(),
		commodities: s.Commodities(),
		lots:        s.Lots(),
		withdrawals: s.Withdrawals(),
		rates:       s.RateSchedules(),
		payments:    s.Payments(),
		reports:     s.Reports(),
	}
}

// llmService elige el proveedor configurado. Sin API key devuelve nil y el módulo AI responde 503.
func llmService(cfg config.AIConfig, log *logger.Logger) ports.LLMService {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			return infraai.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
		}
	default:
		if cfg.AnthropicAPIKey != "" {
			return infraai.NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		}
	}
	log.Warn().Str("provider", cfg.Provider).Msg("sin API key de IA, detección de anomalías deshabilitada")
	return nil
}
