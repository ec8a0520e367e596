package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"supplierapi/docs"
	"supplierapi/internal/cep"
	"supplierapi/internal/config"
	"supplierapi/internal/database"
	"supplierapi/internal/database/migration"
	handlers "supplierapi/internal/http/handler"
	"supplierapi/internal/http/middleware"
	"supplierapi/internal/logger"
	tracing "supplierapi/internal/otel"
	"supplierapi/internal/repository/postgres"
	"supplierapi/internal/service"
	"supplierapi/internal/storage"
	"supplierapi/internal/validation"
)

// @title Supplier API
// @version 1.0
// @description Supplier registry: registration, attachments, responsibility matrix and evaluations.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(healthcheck(cfg.Port))
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.LogLevel
	if cfg.Debug {
		logCfg = logger.ForDebug(logCfg)
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server_failed", zap.Error(err))
	}
}

func run(cfg *config.AppConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting",
		zap.String("port", cfg.Port),
		zap.Bool("debug", cfg.Debug),
		zap.String("lang", cfg.Locale.Lang),
		zap.String("lc_all", cfg.Locale.LcAll),
		zap.Strings("allowed_hosts", cfg.AllowedHosts),
		zap.Bool("auth_required", cfg.AuthRequired),
	)
	if cfg.SecretKey == "" {
		log.Warn("secret_key_not_set")
	}

	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// PostgreSQL connection (pooling via database/sql), then schema and seed data
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	if err := migration.EnsureMigrated(ctx, db, log, database.HostOf(cfg.Database)); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// S3-compatible object storage for attachments
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	cepOpts := []cep.Option{cep.WithLogger(log.With(zap.String("component", "cep"))), cep.WithMetrics(reg)}
	if cfg.Redis.Addr != "" {
		cache, err := cep.NewRedisCache(cfg.Redis, time.Duration(cfg.CEP.CacheTTLSec)*time.Second)
		if err != nil {
			log.Warn("cep_cache_disabled", zap.Error(err))
		} else {
			defer cache.Close()
			cepOpts = append(cepOpts, cep.WithCache(cache))
		}
	}
	cepClient := cep.NewClient(
		cep.DefaultProviders(cep.NewHTTPClient(time.Duration(cfg.CEP.TimeoutSec)*time.Second)),
		cepOpts...,
	)

	// Repositories and services
	suppliers := postgres.NewSupplierPostgres(db)
	domains := postgres.NewDomainPostgres(db)
	attachments := postgres.NewAttachmentPostgres(db)
	matrices := postgres.NewMatrixPostgres(db)
	situations := postgres.NewSituationPostgres(db)
	evaluations := postgres.NewEvaluationPostgres(db)
	validator := validation.New()

	situationSvc := service.NewSituationService(suppliers, domains, situations, attachments, matrices)
	svcs := handlers.Services{
		Suppliers: service.NewSupplierService(service.SupplierDeps{
			Suppliers:   suppliers,
			Domains:     domains,
			Attachments: attachments,
			Store:       objStore,
			Situations:  situationSvc,
			CEP:         cepClient,
			Validator:   validator,
		}),
		Situations:  situationSvc,
		Attachments: service.NewAttachmentService(objStore, attachments, suppliers, domains, situationSvc),
		Matrices:    service.NewMatrixService(matrices, suppliers, situationSvc),
		Domains:     service.NewDomainService(domains),
		Evaluations: service.NewEvaluationService(evaluations, suppliers, validator),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    2 * service.MaxAttachmentSize,
	})

	// Global middleware: tracing, request id plus request logger, access log,
	// metrics, host check and proxy identity
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID(log))
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.AllowedHosts(cfg.HostAllowed, "/api/", "/health", "/healthz", "/metrics"))
	app.Use(middleware.ProxyAuth(cfg.AuthRequired))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, db, svcs)

	go func() {
		<-ctx.Done()
		log.Info("shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error("shutdown_failed", zap.Error(err))
		}
	}()

	return app.Listen(":" + cfg.Port)
}

// healthcheck is the container HEALTHCHECK command. It exits 0 when the API root
// answers 200.
func healthcheck(port string) int {
	code, _, errs := fiber.Get("http://127.0.0.1:" + port + "/api/").Timeout(5 * time.Second).Bytes()
	if len(errs) > 0 || code != fiber.StatusOK {
		fmt.Fprintf(os.Stderr, "healthcheck failed: status=%d errors=%v\n", code, errs)
		return 1
	}
	return 0
}
