package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"karigar/config"
	"karigar/cron"
	"karigar/database"
	availabilityRepoPkg "karigar/database/repository/availability"
	bookingRepoPkg "karigar/database/repository/booking"
	disputeRepoPkg "karigar/database/repository/dispute"
	notificationRepoPkg "karigar/database/repository/notification"
	providerRepoPkg "karigar/database/repository/provider"
	reviewRepoPkg "karigar/database/repository/review"
	"karigar/handlers"
	"karigar/middleware"
	"karigar/routes"
	"karigar/services/agent"
	"karigar/services/booking"
	"karigar/services/matching"
	"karigar/services/notification"
	"karigar/services/pricing"
	"karigar/services/recommendation"
	"karigar/services/review"
	"karigar/services/scheduling"
	"karigar/services/tasks"
	"karigar/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	providerRepo := providerRepoPkg.NewMongoProviderRepo()
	availabilityRepo := availabilityRepoPkg.NewMongoAvailabilityRepo()
	disputeRepo := disputeRepoPkg.NewMongoDisputeRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()

	// Agent gateway. Without an API key every pipeline runs on its
	// deterministic fallback.
	var gateway agent.Gateway = agent.UnavailableGateway{}
	if config.AppConfig.GeminiAPIKey != "" {
		geminiGateway, err := agent.NewGeminiGateway(context.Background(),
			config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini gateway: %v", err)
		}
		gateway = geminiGateway
	} else {
		logger.Warn("main: GEMINI_API_KEY not set, agent pipelines will use fallbacks")
	}

	agentOpts := agent.Options{
		Timeout:          time.Duration(config.AppConfig.AgentTimeoutSeconds) * time.Second,
		MaxAttempts:      config.AppConfig.AgentMaxAttempts,
		BreakerThreshold: config.AppConfig.AgentBreakerThreshold,
		BreakerCoolOff:   time.Duration(config.AppConfig.AgentBreakerCoolOffSec) * time.Second,
		CacheTTL:         time.Duration(config.AppConfig.AgentCacheTTLSeconds) * time.Second,
	}
	responseCache := agent.NewResponseCache(utils.GetCacheClient(), agentOpts.CacheTTL)
	invoker := agent.NewInvoker(gateway, responseCache, agentOpts)

	// Services.
	notificationService := &notification.DefaultNotificationService{
		Repo: notificationRepo,
		FCM:  utils.FCMClient,
	}

	matchingService := &matching.DefaultMatchingService{
		ProviderRepo: providerRepo,
		BookingRepo:  bookingRepo,
		Invoker:      invoker,
		RadiusKm:     config.AppConfig.MatchSearchRadiusKm,
	}

	schedulingService := &scheduling.DefaultSchedulingService{
		AvailabilityRepo: availabilityRepo,
		BookingRepo:      bookingRepo,
		Invoker:          invoker,
	}

	pricingService := &pricing.DefaultPricingService{
		ProviderRepo: providerRepo,
		BookingRepo:  bookingRepo,
		Invoker:      invoker,
	}

	reviewService := &review.DefaultReviewService{
		ReviewRepo:   reviewRepo,
		BookingRepo:  bookingRepo,
		ProviderRepo: providerRepo,
		Notification: notificationService,
		Invoker:      invoker,
	}

	recommendationService := &recommendation.DefaultRecommendationService{
		ProviderRepo: providerRepo,
		BookingRepo:  bookingRepo,
		Invoker:      invoker,
		RadiusKm:     config.AppConfig.MatchSearchRadiusKm,
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()

	bookingService := &booking.DefaultBookingService{
		BookingRepo:  bookingRepo,
		ProviderRepo: providerRepo,
		DisputeRepo:  disputeRepo,
		Matching:     matchingService,
		Scheduling:   schedulingService,
		Notification: notificationService,
		Reminders:    tasks.NewAsynqReminderScheduler(asynqClient),
		Config:       booking.DefaultLifecycleConfig(),
	}

	// Handlers.
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	matchingHandler := handlers.NewMatchingHandler(matchingService, logger)
	schedulingHandler := handlers.NewSchedulingHandler(schedulingService, logger)
	pricingHandler := handlers.NewPricingHandler(pricingService, logger)
	providerHandler := handlers.NewProviderHandler(providerRepo, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityRepo, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService, logger)

	handlerBundle := &handlers.HandlerBundle{
		CreateBookingRequest: bookingHandler.CreateBookingRequest,
		GetBooking:           bookingHandler.GetBooking,
		AcceptBooking:        bookingHandler.AcceptBooking,
		RejectBooking:        bookingHandler.RejectBooking,
		ScheduleBooking:      bookingHandler.ScheduleBooking,
		StartBooking:         bookingHandler.StartBooking,
		CompleteBooking:      bookingHandler.CompleteBooking,
		CancelBooking:        bookingHandler.CancelBooking,
		RaiseDispute:         bookingHandler.RaiseDispute,

		MatchProviders:     matchingHandler.MatchProviders,
		SuggestSlots:       schedulingHandler.SuggestSlots,
		RecommendPrice:     pricingHandler.RecommendPrice,
		RecommendProviders: recommendationHandler.RecommendProviders,

		CreateReview: reviewHandler.CreateReview,
		GetReview:    reviewHandler.GetReview,

		CreateProvider:    providerHandler.CreateProvider,
		GetProvider:       providerHandler.GetProvider,
		GetSlots:          schedulingHandler.GetSlots,
		SetWeeklySchedule: availabilityHandler.SetWeeklySchedule,
		GetWeeklySchedule: availabilityHandler.GetWeeklySchedule,
		AddTimeOff:        availabilityHandler.AddTimeOff,
		DeleteTimeOff:     availabilityHandler.DeleteTimeOff,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background reminder worker.
	cron.InitReminderWorker(notificationService)

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
