package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/pos-api/internal/application/billing"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	domainbilling "github.com/jhoicas/pos-api/internal/domain/billing"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/messaging"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/pos-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// storage repositorios fuera de transacción más el runner de transacciones.
type storage struct {
	txRunner    billing.BillingTxRunner
	products    repository.ProductRepository
	invoices    repository.InvoiceRepository
	counters    repository.CounterRepository
	adjustments repository.StockAdjustmentRepository
	suppliers   repository.SupplierRepository
	customers   repository.CustomerRepository
	close       func()
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
		Str("storage", cfg.Storage.Backend).
		Str("counter", cfg.Storage.CounterBackend).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	store := openStorage(ctx, cfg, log)
	defer store.close()

	// Contador de consecutivos: Redis si se pidió, si no el del backend de datos.
	counters := store.counters
	if cfg.Storage.CounterBackend == "redis" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		counters = infraredis.NewCounterRepository(client, "")
	}

	var publisher billing.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub := messaging.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer kafkaPub.Close()
		publisher = kafkaPub
	} else {
		publisher = messaging.NewLogPublisher(log)
	}

	if err := domainbilling.ValidateInvoiceNumbering(cfg.Billing.InvoicePrefix, cfg.Billing.InvoiceStart); err != nil {
		log.Fatal().Err(err).Msg("BILLING_INVOICE_PREFIX / BILLING_INVOICE_START_NUMBER")
	}

	methods := make([]entity.PaymentMethod, 0, len(cfg.Billing.PaymentMethods))
	for _, m := range cfg.Billing.PaymentMethods {
		pm := entity.PaymentMethod(m)
		if !pm.Valid() {
			log.Fatal().Str("payment_method", m).Msg("BILLING_PAYMENT_METHODS contiene un medio desconocido")
		}
		methods = append(methods, pm)
	}

	sequences := billing.NewSequenceGenerator(counters, cfg.Storage.Timeout)
	stockCoordinator := billing.NewStockAdjustmentCoordinator(store.txRunner, store.invoices, publisher, billing.StockConfig{
		LowStockThreshold: cfg.Billing.LowStockThreshold,
		AlertTopic:        cfg.Kafka.AlertTopic,
		Timeout:           cfg.Storage.Timeout,
	}, log)
	invoiceUC := billing.NewInvoiceUseCase(
		store.txRunner, store.products, store.invoices,
		sequences, stockCoordinator, publisher,
		billing.InvoiceConfig{
			Prefix:         cfg.Billing.InvoicePrefix,
			Start:          cfg.Billing.InvoiceStart,
			TaxPct:         cfg.Billing.TaxPct,
			MaxDiscountPct: cfg.Billing.MaxDiscountPct,
			PaymentMethods: methods,
			InvoiceTopic:   cfg.Kafka.InvoiceTopic,
			Timeout:        cfg.Storage.Timeout,
		},
		log,
	)
	supplierUC := billing.NewSupplierUseCase(store.suppliers, sequences, cfg.Storage.Timeout)
	customerUC := billing.NewCustomerUseCase(store.customers, cfg.Storage.Timeout, log)
	productUC := usecase.NewProductUseCase(store.products, cfg.Storage.Timeout)

	// Barrido de descuentos de stock pendientes (facturas confirmadas cuyo descuento falló).
	sweeper := billing.NewRecoverySweeper(store.adjustments, stockCoordinator, billing.RecoveryConfig{
		Interval: cfg.Storage.RecoveryInterval,
		Retry: billing.RetryPolicy{
			Attempts:  cfg.Storage.RetryAttempts,
			BaseDelay: cfg.Storage.RetryBaseDelay,
		},
		Timeout: cfg.Storage.Timeout,
	}, log)
	sweepCtx, stopSweep := context.WithCancel(ctx)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(sweepCtx)
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		InvoiceUC:  invoiceUC,
		SupplierUC: supplierUC,
		CustomerUC: customerUC,
		JWTSecret:  cfg.JWT.Secret,
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
	stopSweep()
	<-sweepDone

	log.Info().Msg("aplicación detenida")
}

// openStorage abre PostgreSQL (y crea el esquema) o el almacén en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage {
	if cfg.Storage.Backend == "memory" {
		log.Warn().Msg("STORAGE_BACKEND=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			txRunner:    memory.NewTxRunner(s),
			products:    s.Products(),
			invoices:    s.Invoices(),
			counters:    s.Counters(),
			adjustments: s.StockAdjustments(),
			suppliers:   s.Suppliers(),
			customers:   s.Customers(),
			close:       func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("crear esquema")
	}
	return &storage{
		txRunner:    postgres.NewTxRunner(pool),
		products:    postgres.NewProductRepository(pool),
		invoices:    postgres.NewInvoiceRepository(pool),
		counters:    postgres.NewCounterRepository(pool),
		adjustments: postgres.NewStockAdjustmentRepository(pool),
		suppliers:   postgres.NewSupplierRepository(pool),
		customers:   postgres.NewCustomerRepository(pool),
		close:       pool.Close,
	}
}
