package api

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/docverify/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/docverify/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/docverify/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/docverify/internal/database"
	"github.com/saturnino-fabrica-de-software/docverify/internal/service"
	"github.com/saturnino-fabrica-de-software/docverify/internal/ws"
)

// multipart overhead allowed on top of the two uploaded files
const formOverheadBytes = 1 << 20

type Dependencies struct {
	Service *service.VerificationService
	Rules   handler.RuleCatalog
	// DB is optional; when set /ready pings it
	DB database.Pinger
	// Gatherer serves /metrics; nil disables the endpoint
	Gatherer prometheus.Gatherer
	// Events enables the websocket feed at /v1/events
	Events         *ws.Hub
	MaxUploadBytes int64
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	maxUpload := int64(handler.DefaultMaxUploadBytes)
	if deps != nil && deps.MaxUploadBytes > 0 {
		maxUpload = deps.MaxUploadBytes
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "DocVerify API",
		// document + face, each up to maxUpload
		BodyLimit: int(2*maxUpload) + formOverheadBytes,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger, "/health", "/ready", "/metrics"))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var ready handler.ReadinessChecker
	if r.deps != nil && r.deps.DB != nil {
		db := r.deps.DB
		ready = func(ctx context.Context) error {
			return database.HealthCheck(ctx, db)
		}
	}
	healthHandler := handler.NewHealthHandler(ready)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	if r.deps.Gatherer != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	if r.deps.Service == nil {
		return
	}

	v1 := r.app.Group("/v1")

	// Verification routes
	verificationHandler := handler.NewVerificationHandler(r.deps.Service, r.deps.MaxUploadBytes, r.logger)
	v1.Post("/verifications", verificationHandler.Create)
	v1.Get("/verifications", verificationHandler.List)
	v1.Get("/verifications/:id", verificationHandler.Get)

	// Standalone engine routes
	engineHandler := handler.NewEngineHandler(r.deps.Service, r.deps.Rules, r.deps.MaxUploadBytes)
	v1.Post("/mrz/parse", engineHandler.ParseMRZ)
	v1.Post("/quality", engineHandler.AnalyzeQuality)
	v1.Post("/rules/validate", engineHandler.ValidateRules)
	v1.Get("/rules", engineHandler.Rules)

	// Live verification feed
	if r.deps.Events != nil {
		v1.Get("/events", ws.UpgradeMiddleware(), ws.Handler(r.deps.Events))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}

// ShutdownWithContext stops accepting requests and waits for in-flight ones
func (r *Router) ShutdownWithContext(ctx context.Context) error {
	return r.app.ShutdownWithContext(ctx)
}
