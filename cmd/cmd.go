package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sonorus-backend/internal/config"
	"sonorus-backend/internal/entity"
	"sonorus-backend/internal/handlers"
	"sonorus-backend/internal/middleware"
	"sonorus-backend/internal/repository"
	"sonorus-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	albumRepo, err := repository.NewRecordRepository(db, entity.EntityAlbum)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create album repository")
	}
	reviewRepo, err := repository.NewRecordRepository(db, entity.EntityReview)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create review repository")
	}
	followRepo, err := repository.NewRecordRepository(db, entity.EntityFollow)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create follow repository")
	}

	// Initialize services
	store := services.NewStore(map[string]services.RecordStore{
		entity.EntityAlbum:  albumRepo,
		entity.EntityReview: reviewRepo,
		entity.EntityFollow: followRepo,
	})
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret)
	community := services.NewCommunityService(store, reviewRepo, albumRepo, followRepo)
	avatarService, err := services.NewAvatarService(
		cfg.AWS.Region,
		cfg.AWS.AvatarBucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
		cfg.AWS.PublicURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create avatar service")
	}
	lastfm := services.NewLastFMClient(cfg.LastFM.APIKey, cfg.LastFM.BaseURL)
	hub := services.NewFeedHub(community)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(authService, avatarService)
	albumHandler := handlers.NewAlbumHandler(store, community, lastfm)
	reviewHandler := handlers.NewReviewHandler(store, hub)
	followHandler := handlers.NewFollowHandler(store, community)
	criticHandler := handlers.NewCriticHandler(community)
	wsHandler := handlers.NewWebSocketHandler(hub, authService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes; an optional bearer token scopes what reads return
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authService))
			r.Post("/auth/signup", userHandler.SignUp)
			r.Post("/auth/signin", userHandler.SignIn)
			r.Get("/albums", albumHandler.ListAlbums)
			r.Get("/albums/{album_id}", albumHandler.GetAlbum)
			r.Get("/albums/{album_id}/scores", albumHandler.GetAlbumScores)
			r.Get("/albums/{album_id}/reviews", reviewHandler.ListAlbumReviews)
			r.Get("/reviews", reviewHandler.ListReviews)
			r.Get("/critics", criticHandler.ListCritics)
			r.Get("/critics/{email}", criticHandler.GetCriticProfile)
			r.Get("/metadata/albums", albumHandler.SearchMetadata)
			r.Get("/metadata/album", albumHandler.GetMetadata)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authService))
			r.Post("/albums", albumHandler.CreateAlbum)
			r.Patch("/albums/{album_id}", albumHandler.UpdateAlbum)
			r.Delete("/albums/{album_id}", albumHandler.DeleteAlbum)
			r.Post("/albums/{album_id}/reviews", reviewHandler.CreateReview)
			r.Patch("/reviews/{review_id}", reviewHandler.UpdateReview)
			r.Delete("/reviews/{review_id}", reviewHandler.DeleteReview)
			r.Post("/follows", followHandler.CreateFollow)
			r.Get("/follows", followHandler.ListFollows)
			r.Get("/follows/state", followHandler.GetFollowState)
			r.Delete("/follows/{follow_id}", followHandler.DeleteFollow)
			r.Get("/feed", criticHandler.GetFeed)
			r.Get("/me", userHandler.Me)
			r.Patch("/me", userHandler.UpdateProfile)
			r.Post("/me/avatar", userHandler.UploadAvatar)
		})
	})

	// WebSocket route
	r.Get("/ws/feed", wsHandler.HandleFeed)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
