package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"p2eInfernoAPI/handlers"
	"p2eInfernoAPI/internal/cache"
	"p2eInfernoAPI/internal/config"
	"p2eInfernoAPI/internal/jobs"
	"p2eInfernoAPI/internal/notification"
	"p2eInfernoAPI/internal/streak"
	"p2eInfernoAPI/middleware"
	"p2eInfernoAPI/services"
)

var (
	cfg                 *config.Config
	dbPool              *pgxpool.Pool
	redisCache          *cache.Cache
	learnerService      *services.LearnerService
	checkinService      *services.CheckinService
	rewardService       *services.RewardService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
	calculator          *streak.Calculator
	scheduler           *jobs.Scheduler
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	redisCache = cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisCache != nil {
		log.Println("Redis leaderboard cache enabled")
	}

	notificationService = services.NewNotificationService(dbPool)
	learnerService = services.NewLearnerService(dbPool)
	rewardService = services.NewRewardService(dbPool, cfg, redisCache, notificationService)
	checkinService = services.NewCheckinService(dbPool, rewardService, notificationService)

	calculator = streak.NewCalculator(checkinService, checkinService, streak.CalculatorConfig{
		MaxStreakGap: cfg.StreakMaxGap,
		Timezone:     cfg.StreakTimezone,
	})
	checkinService.SetCalculator(calculator)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	loc, err := time.LoadLocation(cfg.StreakTimezone)
	if err != nil {
		log.Printf("Warning: could not load timezone %q, sweeps run in UTC", cfg.StreakTimezone)
		loc = time.UTC
	}
	scheduler = jobs.NewScheduler(jobs.Config{
		MaxStreakGap: cfg.StreakMaxGap,
		AtRiskSpec:   cfg.AtRiskSweepSpec,
		BrokenSpec:   cfg.BrokenSweepSpec,
		Location:     loc,
	})

	middleware.InitPrometheus()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	if err := scheduler.Start(notificationService); err != nil {
		log.Fatal("Failed to start streak sweeps: ", err)
	}
	defer scheduler.Stop()

	learnerHandler := handlers.NewLearnerHandler(learnerService, rewardService)
	checkinHandler := handlers.NewCheckinHandler(checkinService)
	streakHandler := handlers.NewStreakHandler(calculator, rewardService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	webhookHandler := handlers.NewWebhookHandler(learnerService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	}).Methods("GET")

	// Clerk lifecycle events arrive unauthenticated; signature-verified instead
	r.HandleFunc("/api/v1/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/learner/profile", learnerHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/learner/profile", learnerHandler.UpdateProfile).Methods("PUT")
	protected.HandleFunc("/learner/leaderboard", learnerHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/learner/badges", learnerHandler.GetBadges).Methods("GET")

	protected.HandleFunc("/checkins", checkinHandler.RecordCheckin).Methods("POST")
	protected.HandleFunc("/checkins/history", checkinHandler.GetHistory).Methods("GET")

	protected.HandleFunc("/streak", streakHandler.GetStreak).Methods("GET")
	protected.HandleFunc("/streak/multiplier", streakHandler.GetMultiplier).Methods("GET")
	protected.HandleFunc("/streak/tiers", streakHandler.GetTiers).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotification).Methods("DELETE")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
