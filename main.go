package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tajriba/config"
	"tajriba/cron"
	"tajriba/database"
	bookingRepoPkg "tajriba/database/repository/booking"
	paymentRepoPkg "tajriba/database/repository/payment"
	serviceRepoPkg "tajriba/database/repository/service"
	userRepoPkg "tajriba/database/repository/user"
	"tajriba/handlers"
	"tajriba/middleware"
	"tajriba/routes"
	"tajriba/services/booking"
	"tajriba/services/catalog"
	"tajriba/services/notification"
	"tajriba/services/payment"
	"tajriba/services/user"
	"tajriba/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()

	refundTiers, err := config.ParseRefundTiers(config.AppConfig.RefundTiers)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid REFUND_TIERS: %v", err)
	}
	refundPolicy, err := booking.NewRefundPolicy(refundTiers)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid refund policy: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()
	serviceRepo := serviceRepoPkg.NewMongoServiceRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	userService := &user.DefaultUserService{
		Repo:      userRepo,
		AuthCache: utils.GetAuthCacheClient(),
		Logger:    logger,
	}

	catalogService := &catalog.DefaultCatalogService{
		Repo:     serviceRepo,
		Currency: config.AppConfig.Currency,
		Logger:   logger,
	}

	notificationService := &notification.DefaultNotificationService{
		Users:  userRepo,
		Logger: logger,
	}

	gateway := payment.NewStripeGateway(
		config.AppConfig.StripeKey,
		time.Duration(config.AppConfig.GatewayTimeoutSeconds)*time.Second,
		logger,
	)

	coordinator := &booking.EscrowCoordinator{
		Bookings:       bookingRepo,
		Payments:       paymentRepo,
		Users:          userRepo,
		Gateway:        gateway,
		Policy:         refundPolicy,
		CommissionRate: config.AppConfig.CommissionRate,
		Notifier:       notificationService,
		Logger:         logger,
	}

	bookingService := &booking.DefaultBookingService{
		Services:     serviceRepo,
		Bookings:     bookingRepo,
		Users:        userRepo,
		Availability: &booking.DefaultAvailabilityChecker{Repo: bookingRepo, Cache: utils.GetCacheClient()},
		Coordinator:  coordinator,
		PendingSLA:   time.Duration(config.AppConfig.PendingSLAHours) * time.Hour,
		Logger:       logger,
	}

	// Assemble the handler bundle and register routes.
	handlerBundle := handlers.NewHandlerBundle(userService, catalogService, bookingService, logger)
	routes.RegisterRoutes(router, handlerBundle)

	// Background sweeps: pending expiry and auto-completion.
	cron.InitBookingWorker(bookingService)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
