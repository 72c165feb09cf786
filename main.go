package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotify/config"
	"slotify/cron"
	"slotify/database"
	"slotify/handlers"
	"slotify/middleware"
	"slotify/routes"
	"slotify/utils"

	appointmentRepo "slotify/database/repository/appointment"
	deviceRepo "slotify/database/repository/device"
	loyaltyRepo "slotify/database/repository/loyalty"
	slotlockRepo "slotify/database/repository/slotlock"
	waitlistRepo "slotify/database/repository/waitlist"

	"slotify/services/booking"
	"slotify/services/loyalty"
	"slotify/services/notification"
	"slotify/services/slotlock"
	"slotify/services/waitlist"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Repositories.
	locks := slotlockRepo.NewMongoSlotLockRepo()
	appointments := appointmentRepo.NewMongoAppointmentRepo()
	waitlists := waitlistRepo.NewMongoWaitlistRepo()
	loyaltyAccounts := loyaltyRepo.NewMongoLoyaltyRepo()
	devices := deviceRepo.NewMongoDeviceRepo()

	// Services.
	eventClient := cron.NewEventQueueClient()
	defer eventClient.Close()

	lockSvc := &slotlock.DefaultSlotLockService{
		Locks:        locks,
		Appointments: appointments,
	}
	loyaltySvc := &loyalty.DefaultLoyaltyService{Repo: loyaltyAccounts}
	bookingSvc := &booking.DefaultBookingService{
		Appointments: appointments,
		Locks:        locks,
		Loyalty:      loyaltySvc,
		Events:       &booking.AsynqSlotFreedEmitter{Client: eventClient},
	}
	waitlistSvc := &waitlist.DefaultWaitlistService{
		Repo:   waitlists,
		Pusher: &notification.DefaultNotificationService{Devices: devices},
	}

	// Background workers.
	cron.InitSlotFreedWorker(waitlistSvc)

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	go cron.RunLockSweeper(sweeperCtx, lockSvc)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// HTTP server.
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(utils.ErrorHandler())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimitMiddleware())

	routes.SetupRoutes(router, routes.Handlers{
		Slots:    handlers.NewSlotLockHandler(lockSvc),
		Bookings: handlers.NewBookingHandler(bookingSvc),
		Waitlist: handlers.NewWaitlistHandler(waitlistSvc),
		Loyalty:  handlers.NewLoyaltyHandler(loyaltySvc),
		Payments: handlers.NewPaymentHandler(),
		Devices:  handlers.NewDeviceHandler(devices),
		Admin:    handlers.NewAdminHandler(lockSvc),
	})

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Error("Failed to disconnect MongoDB", zap.Error(err))
	}
	logger.Info("Server exited cleanly")
}
