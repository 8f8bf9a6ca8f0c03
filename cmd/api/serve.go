package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"cmsapi/internal/database"
	"cmsapi/internal/database/migration"
	handlers "cmsapi/internal/http/handler"
	"cmsapi/internal/http/middleware"
	"cmsapi/internal/model"
	"cmsapi/internal/otel"
	"cmsapi/internal/repository/gormrepo"
	"cmsapi/internal/service"
	"cmsapi/internal/storage"
)

const serviceName = "cmsapi"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func runMigrate(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	gdb, sqlDB, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer sqlDB.Close()

	return migration.Run(ctx, gdb, log)
}

func runServe(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, serviceName, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	gdb, sqlDB, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := migration.Run(ctx, gdb, log); err != nil {
			return err
		}
	}

	svcs := handlers.Services{
		Customers: service.NewCustomerService(gormrepo.NewResource[model.Customer](gdb, model.CustomerSchema), log),
		Sellers:   service.NewSellerService(gormrepo.NewResource[model.Seller](gdb, model.SellerSchema), log),
		Types:     service.NewTypeService(gormrepo.NewResource[model.Type](gdb, model.TypeSchema), log),
	}

	if cfg.MinIO.Enabled() {
		objStore, err := storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Error("failed to initialize object storage", zap.Error(err))
			return err
		}
		expiry := time.Duration(cfg.MinIO.URLExpirySec) * time.Second
		svcs.Uploads = service.NewUploadService(objStore, gormrepo.NewFile(gdb), expiry)
	} else {
		log.Info("object storage not configured, upload routes disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(log),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	app.Use(otelfiber.Middleware())
	// RequestID runs before Logger so every log line carries the id.
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, sqlDB, reg, svcs)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info("server listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("failed to start server", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
