package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kwanza-pay/kwanza/internal/account"
	"github.com/kwanza-pay/kwanza/internal/biometric"
	"github.com/kwanza-pay/kwanza/internal/config"
	"github.com/kwanza-pay/kwanza/internal/instrument"
	"github.com/kwanza-pay/kwanza/internal/intent"
	"github.com/kwanza-pay/kwanza/internal/ledger"
	"github.com/kwanza-pay/kwanza/internal/middleware"
	"github.com/kwanza-pay/kwanza/internal/notification"
	"github.com/kwanza-pay/kwanza/internal/session"
	"github.com/kwanza-pay/kwanza/internal/statement"
	"github.com/kwanza-pay/kwanza/internal/stepup"
	"github.com/kwanza-pay/kwanza/internal/transfer"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Backends: Postgres/Redis in production, in-memory in dev mode.
	var ledgerStore ledger.Store
	var accountRepo account.Repository
	var instrumentRepo instrument.Repository
	if d.DB != nil {
		ledgerStore = ledger.NewPostgresStore(d.DB)
		accountRepo = account.NewPostgresRepository(d.DB)
		instrumentRepo = instrument.NewPostgresRepository(d.DB)
	} else {
		ledgerStore = ledger.NewInMemory()
		accountRepo = account.NewMemoryRepository()
		instrumentRepo = instrument.NewMemoryRepository()
	}

	var sessions session.Store
	var attempts stepup.AttemptStore
	if d.Cache != nil {
		sessions = session.NewRedisStore(d.Cache, d.Cfg.SessionTTL)
		attempts = stepup.NewRedisAttemptStore(d.Cache, d.Cfg.BiometricLockWindow)
	} else {
		sessions = session.NewMemoryStore(d.Cfg.SessionTTL)
		attempts = stepup.NewMemoryAttemptStore()
	}

	var notifier notification.Notifier
	if d.Cfg.KafkaBroker != "" {
		notifier = notification.NewKafkaNotifier(d.Cfg.KafkaBroker, d.Cfg.KafkaTopic, d.Logger)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	// Services and handlers
	accountSvc := account.NewService(accountRepo)
	instrumentSvc := instrument.NewService(instrumentRepo, ledgerStore)
	statementSvc := statement.NewService(ledgerStore)
	engine := transfer.NewEngine(ledgerStore, instrumentSvc, notifier)
	matcher := biometric.NewMatcher(d.Cfg.CosineThreshold, d.Cfg.DistanceThreshold)
	authenticator := stepup.NewAuthenticator(engine, accountRepo, matcher, attempts, d.Cfg.BiometricMaxAttempts)

	accountHandler := account.NewHandler(accountSvc, sessions)
	instrumentHandler := instrument.NewHandler(instrumentSvc, statementSvc)
	transferHandler := transfer.NewHandler(engine, instrumentSvc)
	stepupHandler := stepup.NewHandler(authenticator, engine)
	intentHandler := intent.NewHandler(instrumentSvc, engine)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAccountRoutes(api, accountHandler, rateLimiter)

	// Protected routes
	protected := api.Group("", middleware.SessionAuth(sessions))
	RegisterProtectedAccountRoutes(protected, accountHandler)
	RegisterInstrumentRoutes(protected, instrumentHandler)
	RegisterTransferRoutes(protected, transferHandler, stepupHandler)
	RegisterIntentRoutes(protected, intentHandler)

	return nil
}
