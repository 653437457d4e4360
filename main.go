package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	swag "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "batterymart/docs" // <-- required to register swagger spec

	"batterymart/controller"
	"batterymart/middleware"
	"batterymart/provider"
	"batterymart/repository"
	"batterymart/seeder"
	"batterymart/service"
	"batterymart/util"
)

// @title           BatteryMart Verification API
// @version         1.0
// @description     Seller identity (NIN) and store registration (CAC) verification for the BatteryMart marketplace.

// @contact.name    API Support

// @host            localhost:4000
// @BasePath        /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v (using system environment variables)", err)
	}

	cfg := util.LoadConfig()

	logger, err := util.NewLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := util.InitDB(cfg.DB, logger)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	if err := seeder.SeedAdmin(db, cfg.Admin, logger); err != nil {
		logger.Fatal("admin seed failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)

	if cfg.Verification.ClientID == "" || cfg.Verification.Secret == "" {
		logger.Warn("QOREID_CLIENT_ID or QOREID_SECRET not set; verification requests will fail authentication")
	}
	verifier := provider.NewClient(cfg.Verification.Provider(), provider.NewTokenCache(), logger.Named("provider"))

	var mailer service.Mailer
	if cfg.SMTP.Enabled() {
		mailer = service.NewEmailService(cfg.SMTP)
	} else {
		logger.Info("SMTP_HOST not set, notification emails disabled")
	}

	notificationService := service.NewNotificationService(notificationRepo, userRepo, mailer, logger)
	storeService := service.NewStoreService(storeRepo, userRepo, notificationService, logger)
	verificationService := service.NewVerificationService(
		verifier, userRepo, storeRepo, verificationRepo,
		notificationService, cfg.Verification.AutoApprove, logger,
	)

	bans := middleware.NewBanList(cfg.RateLimit.Strikes, cfg.RateLimit.BanDuration)

	scheduler, err := util.StartCleanup(cfg.Cleanup.Schedule, logger,
		util.CleanupJob{
			Name: "read_notifications",
			Run: func(ctx context.Context) (int64, error) {
				return notificationService.PurgeRead(ctx, days(cfg.Cleanup.NotificationRetentionDays))
			},
		},
		util.CleanupJob{
			Name: "verification_records",
			Run: func(ctx context.Context) (int64, error) {
				return verificationService.PurgeRecords(ctx, days(cfg.Cleanup.RecordRetentionDays))
			},
		},
		util.CleanupJob{
			Name: "ip_bans",
			Run: func(context.Context) (int64, error) {
				return bans.Sweep(), nil
			},
		},
	)
	if err != nil {
		logger.Fatal("cleanup scheduler failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	setupRoutes(app, logger, cfg, bans, verificationService, storeService, notificationService)

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	<-scheduler.Stop().Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func setupRoutes(
	app *fiber.App,
	logger *zap.Logger,
	cfg *util.Config,
	bans *middleware.BanList,
	verificationService *service.VerificationService,
	storeService *service.StoreService,
	notificationService *service.NotificationService,
) {
	// Apply timer metrics middleware globally to all routes
	app.Use(middleware.TimerMetrics(logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/swagger/*", swag.HandlerDefault)

	verifyController := controller.NewVerificationController(verificationService, logger)
	storeController := controller.NewStoreController(storeService, logger)
	notificationController := controller.NewNotificationController(notificationService, logger)

	api := app.Group("/api/v1")

	// provider lookups are billed per call
	verification := api.Group("/verification")
	limited := middleware.VerificationRateLimiter(cfg.RateLimit, bans, logger)
	verification.Post("/nin", limited, verifyController.VerifyNIN)
	verification.Post("/cac", limited, verifyController.VerifyCAC)
	verification.Get("/records/:subjectType/:subjectId", verifyController.Records)

	admin := api.Group("/admin")
	admin.Get("/stores/pending", storeController.ListPending)
	admin.Post("/stores/:id/approve", storeController.Approve)
	admin.Post("/stores/:id/reject", storeController.Reject)

	api.Get("/stores/:id", storeController.GetStore)
	api.Put("/stores/:id/bank-details", storeController.UpdateBankDetails)

	api.Get("/users/:id/notifications", notificationController.List)
	api.Get("/users/:id/notifications/unread-count", notificationController.UnreadCount)
	api.Post("/users/:id/notifications/read-all", notificationController.MarkAllRead)
	api.Post("/notifications/:id/read", notificationController.MarkRead)
}
