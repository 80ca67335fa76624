// API SERVICE - cmd/api/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"flicks/internal/auth"
	"flicks/internal/catalog"
	"flicks/internal/catalog/metadata"
	"flicks/internal/handler"
	"flicks/internal/middleware"
	"flicks/internal/playback"
	"flicks/internal/profile"
	"flicks/internal/progress"
	"flicks/internal/repository/postgres"
	"flicks/internal/session"
	"flicks/internal/subscription"
	"flicks/internal/watchlist"
	"flicks/pkg/cache"
	"flicks/pkg/config"
	"flicks/pkg/logger"
	"flicks/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.New("api")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Connect to Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	redisCache := cache.NewFromClient(redisClient)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	sessionRepo := postgres.NewDeviceSessionRepository(db)
	progressRepo := postgres.NewProgressRepository(db)
	contentRepo := postgres.NewContentRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	watchlistRepo := postgres.NewWatchlistRepository(db)

	// Initialize services
	authService := auth.NewService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	profileService := profile.NewService(profileRepo)
	sessionService := session.NewService(sessionRepo, cfg.Session.EvictionPolicy, log)
	progressService := progress.NewService(progressRepo, cfg.Progress, log)
	subscriptionService := subscription.NewService(subscriptionRepo)
	metadataClient := metadata.New(cfg.Metadata.BaseURL, cfg.Metadata.APIKey, cfg.Metadata.Timeout)
	catalogService, err := catalog.NewService(contentRepo, metadataClient, redisCache, cfg.Metadata, log)
	if err != nil {
		log.Fatal("Failed to initialize catalog", map[string]interface{}{"error": err.Error()})
	}
	watchlistService := watchlist.NewService(watchlistRepo, contentRepo)
	playbackService := playback.NewService(catalogService, progressService, subscriptionService, cfg.Stream)

	// Initialize handlers
	val := validator.New()
	authHandler := handler.NewAuthHandler(authService, val, log)
	profileHandler := handler.NewProfileHandler(profileService, sessionService, subscriptionService, val, log)
	sessionHandler := handler.NewSessionHandler(sessionService, log)
	progressHandler := handler.NewProgressHandler(progressService, profileService, val, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	watchlistHandler := handler.NewWatchlistHandler(watchlistService, profileService, log)
	planHandler := handler.NewPlanHandler(subscriptionService, val, log)
	playbackHandler := handler.NewPlaybackHandler(playbackService, profileService, log)
	playerSocket := handler.NewPlayerSocketHandler(progressService, sessionService, profileService, log)

	// Setup router
	r := mux.NewRouter()

	// Middleware
	r.Use(middleware.CORS)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.NewRateLimiter(redisClient, 120, time.Minute).Limit)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.BodyLimit(1 << 20))

	// Routes
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/api/v1/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)
	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	api.HandleFunc("/profiles", profileHandler.List).Methods("GET")
	api.HandleFunc("/profiles", profileHandler.Create).Methods("POST")
	api.HandleFunc("/profiles/{id}", profileHandler.Update).Methods("PUT")
	api.HandleFunc("/profiles/{id}", profileHandler.Delete).Methods("DELETE")
	api.HandleFunc("/profiles/{id}/select", profileHandler.Select).Methods("POST")

	api.HandleFunc("/sessions", sessionHandler.List).Methods("GET")
	api.HandleFunc("/sessions/{id}/heartbeat", sessionHandler.Heartbeat).Methods("POST")
	api.HandleFunc("/sessions/{id}", sessionHandler.Revoke).Methods("DELETE")

	api.HandleFunc("/profiles/{id}/progress", progressHandler.Record).Methods("POST")
	api.HandleFunc("/profiles/{id}/continue-watching", progressHandler.ContinueWatching).Methods("GET")

	api.HandleFunc("/catalog/trending", catalogHandler.Trending).Methods("GET")
	api.HandleFunc("/catalog/{id}", catalogHandler.Detail).Methods("GET")
	api.HandleFunc("/catalog/{id}/structure", catalogHandler.Structure).Methods("GET")

	api.HandleFunc("/profiles/{id}/watchlist", watchlistHandler.List).Methods("GET")
	api.HandleFunc("/profiles/{id}/watchlist", watchlistHandler.Add).Methods("POST")
	api.HandleFunc("/profiles/{id}/watchlist/{contentID}", watchlistHandler.Remove).Methods("DELETE")

	api.HandleFunc("/plans", planHandler.Plans).Methods("GET")
	api.HandleFunc("/subscription", planHandler.Subscription).Methods("GET")
	api.HandleFunc("/subscription", planHandler.ChangePlan).Methods("PUT")

	api.HandleFunc("/playback/{contentID}", playbackHandler.Describe).Methods("GET")
	api.HandleFunc("/player/ws", playerSocket.Serve).Methods("GET")

	// Background pruning of sessions with no recent heartbeat
	pruneCtx, cancelPrune := context.WithCancel(context.Background())
	defer cancelPrune()
	go func() {
		ticker := time.NewTicker(cfg.Session.PruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().UTC().Add(-cfg.Session.StaleAfter)
				if n := sessionService.PruneStale(pruneCtx, cutoff); n > 0 {
					log.Info("Pruned stale sessions", map[string]interface{}{"count": n})
				}
			case <-pruneCtx.Done():
				return
			}
		}
	}()

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("API service starting", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server stopped", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"api"}`))
}
