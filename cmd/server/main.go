package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/audit"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/config"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/database"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/events"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/logger"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/mealperiod"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/middleware"
	"github.com/JoshuaHartlep/Sushi-Point-of-Sale-Interface/internal/orders"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("invalid configuration", zap.Error(err))
	}
	if err := logger.Init(cfg.AppEnv); err != nil {
		logger.L().Fatal("logger init failed", zap.Error(err))
	}
	defer logger.Sync()

	for _, w := range cfg.Warnings() {
		logger.L().Warn(w)
	}

	if err := database.Init(cfg); err != nil {
		logger.L().Fatal("database init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	period, err := mealperiod.NewProvider(ctx, mealperiod.NewSettingsStore(database.DB))
	if err != nil {
		logger.L().Fatal("meal period init failed", zap.Error(err))
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		rp, err := events.NewRabbitPublisher(cfg.AMQPURL)
		if err != nil {
			logger.L().Warn("order events disabled, rabbitmq unavailable", zap.Error(err))
		} else {
			publisher = rp
		}
	}
	defer publisher.Close()

	recorder := audit.NewDBRecorder(database.DB)
	orderSvc := orders.NewService(orders.NewRepository(database.DB), period, publisher, recorder, orders.Options{
		StrictTransitions: cfg.StrictStatusTransitions,
		DefaultAycePrice:  cfg.DefaultAycePrice,
	})

	app := fiber.New(fiber.Config{
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.HeaderRequestID,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog())

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx.Done())
	app.Use(limiter.Handler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	registerRoutes(app.Group(cfg.APIPrefix), routeDeps{
		DB:     database.DB,
		Orders: orderSvc,
		Period: period,
		Audit:  recorder,
	})

	go func() {
		<-ctx.Done()
		logger.L().Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.L().Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.L().Info("server starting", zap.String("port", cfg.HTTPPort), zap.String("prefix", cfg.APIPrefix))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
