package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GRuizV/socialapi/internal/audit"
	"github.com/GRuizV/socialapi/internal/auth"
	"github.com/GRuizV/socialapi/internal/config"
	"github.com/GRuizV/socialapi/internal/middleware"
	"github.com/GRuizV/socialapi/internal/posts"
	"github.com/GRuizV/socialapi/internal/store"
	"github.com/GRuizV/socialapi/internal/votes"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if cfg.SecretKey == "" {
		slog.Error("SECRET_KEY is required")
		os.Exit(1)
	}

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		slog.Error("postgres migrate failed", "error", err)
		os.Exit(1)
	}

	// ── Redis ────────────────────────────────────────────────
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()
	revoker := auth.NewRevoker(rdb)

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, mongoopts.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		slog.Error("mongo connect failed", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(ctx)
	trail := audit.NewTrail(mongoClient.Database(cfg.MongoDB))

	// ── MinIO ────────────────────────────────────────────────
	files, err := store.NewAttachmentStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		slog.Error("minio connect failed", "error", err)
		os.Exit(1)
	}

	// ── Handlers ─────────────────────────────────────────────
	tokens := auth.NewTokenIssuer(cfg.SecretKey)
	authHandler := auth.NewHandler(pgStore, tokens, revoker)
	postHandler := posts.NewHandler(pgStore, files, trail)
	voteHandler := votes.NewHandler(pgStore, trail)
	requireAuth := middleware.RequireAuth(tokens, revoker, pgStore)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/login", authHandler.Login)
	r.With(requireAuth).Post("/logout", authHandler.Logout)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", authHandler.Register)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", authHandler.List)
			r.Get("/{id}", authHandler.Get)
			r.Delete("/{id}", authHandler.Delete)
		})
	})

	r.Route("/posts", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", postHandler.List)
		r.Post("/", postHandler.Create)
		r.Get("/{id}", postHandler.Get)
		r.Put("/{id}", postHandler.Update)
		r.Delete("/{id}", postHandler.Delete)
		r.Put("/{id}/attachment", postHandler.UploadAttachment)
		r.Get("/{id}/attachment", postHandler.DownloadAttachment)
		r.Get("/{id}/activity", postHandler.Activity)
	})

	r.With(requireAuth).Post("/votes", voteHandler.Vote)

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
