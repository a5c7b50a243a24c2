package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivang14d04/BlogCircle/internal/auth"
	"github.com/Shivang14d04/BlogCircle/internal/config"
	"github.com/Shivang14d04/BlogCircle/internal/db"
	"github.com/Shivang14d04/BlogCircle/internal/events"
	"github.com/Shivang14d04/BlogCircle/internal/handlers"
	"github.com/Shivang14d04/BlogCircle/internal/middleware"
	"github.com/Shivang14d04/BlogCircle/internal/posts"
	"github.com/Shivang14d04/BlogCircle/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	cfg := config.Load()

	ctx := context.Background()

	mongoClient, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Error("mongodb connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("mongodb disconnect failed", "error", err)
		}
	}()

	s3Client, err := storage.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey)
	if err != nil {
		logger.Error("s3 client setup failed", "error", err)
		os.Exit(1)
	}
	store := storage.NewS3Storage(s3Client, cfg.S3Bucket)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("rabbitmq connection failed", "error", err)
			os.Exit(1)
		}
		defer rmq.Close()
		publisher = rmq
	} else {
		logger.Warn("RABBITMQ_URL not set, events disabled")
	}

	repo := posts.NewMongoRepository(mongoClient.Database(cfg.MongoDatabase))
	svc := posts.NewService(repo, store, publisher, logger, cfg.S3Bucket, cfg.AWSRegion, cfg.CDNBaseURL)
	postsHandler := handlers.NewPostsHandler(svc, logger)
	resolver := auth.NewResolver(cfg.JWTSecret)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.Health(&handlers.HealthDeps{
		Mongo:       mongoClient,
		Storage:     store,
		RabbitMQURL: cfg.RabbitMQURL,
	}))
	mux.HandleFunc("GET /posts", postsHandler.List())
	mux.HandleFunc("POST /posts", postsHandler.Create())
	mux.HandleFunc("GET /posts/{slug}", postsHandler.Get())
	mux.HandleFunc("PUT /posts/{slug}", postsHandler.Update())
	mux.HandleFunc("DELETE /posts/{slug}", postsHandler.Delete())
	mux.HandleFunc("GET /assets/{id}", postsHandler.Asset())

	handler := middleware.RequestID(
		middleware.Logging(logger)(
			middleware.Auth(resolver, logger)(mux),
		),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
