package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bilgisen/ujala/internal/api"
	"github.com/bilgisen/ujala/internal/auth"
	"github.com/bilgisen/ujala/internal/cache"
	"github.com/bilgisen/ujala/internal/config"
	"github.com/bilgisen/ujala/internal/feed"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/media"
	"github.com/bilgisen/ujala/internal/middleware"
	"github.com/bilgisen/ujala/internal/objectstore"
	"github.com/bilgisen/ujala/internal/publishing"
	"github.com/bilgisen/ujala/internal/reporters"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/bilgisen/ujala/internal/storage"
	"github.com/gofiber/fiber/v2"
)

// maxUploadFiles bounds a single submission: image, video and a full gallery.
const maxUploadFiles = 12

func main() {
	// Load and validate configuration
	cfg := config.Load()

	output := cfg.LogFile
	if output == "" {
		output = "stdout"
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: !cfg.IsProduction(),
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	ctx := context.Background()

	client, db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		log.Info().Msg("Closing MongoDB client...")
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error closing MongoDB client")
		}
	}()
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	var store objectstore.Store = objectstore.Disabled{}
	if cfg.StorageEnabled() {
		r2, err := objectstore.NewR2(ctx, objectstore.R2Config{
			Endpoint:        cfg.R2Endpoint,
			Bucket:          cfg.R2Bucket,
			PublicURL:       cfg.R2PublicURL,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
			NoPublicACL:     cfg.R2NoPublicACL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object storage")
		}
		store = r2
		log.Info().Str("bucket", cfg.R2Bucket).Msg("Object storage enabled")
	}

	local, err := storage.NewLocal(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadsDir).Msg("Failed to prepare uploads directory")
	}

	resolver := media.NewResolver(store, local, media.Config{
		StoragePublicBase: cfg.R2PublicURL,
		StorageEndpoint:   cfg.StorageEndpointURL(),
		ServerURL:         cfg.ServerURL,
		PublicDir:         filepath.Dir(local.Dir()),
		Fallback:          cfg.DefaultOGImage,
		SignedURLTTL:      cfg.SignedURLTTL,
		StorageTimeout:    cfg.StorageTimeout,
		MaxConcurrency:    cfg.MaxConcurrency,
	})

	var responses cache.Cache = cache.NewMemory(cfg.CacheTTL)
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix, cfg.CacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, caching provider responses in memory")
		} else {
			responses = redisCache
		}
	}
	defer func() {
		if err := responses.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache")
		}
	}()

	live := feed.NewAggregator(feed.NewClient(cfg.NewsProvider, cfg.NewsAPIKey), responses)
	if !live.Configured() {
		log.Warn().Msg("NEWS_API_KEY is not set, live news endpoints are unavailable")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpires)
	handlers := api.NewHandlers(api.Deps{
		News: publishing.NewService(repository.NewMongoNews(db), resolver),
		Accounts: reporters.NewService(repository.NewMongoUsers(db), resolver, tokens,
			reporters.SuperAdmin{Email: cfg.SuperEmail, Password: cfg.SuperPassword}, cfg.ServerURL),
		Live:   live,
		Local:  local,
		Config: cfg,

		Categories: repository.NewMongoCategories(db),
		Contacts:   repository.NewMongoContacts(db),
		Proxy:      media.NewProxy(store, cfg.StorageTimeout),
	})

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    int(cfg.MaxFileSize) * maxUploadFiles,
		ErrorHandler: middleware.ErrorHandler,
	})

	api.SetupRoutes(app, handlers, api.RouteConfig{
		Tokens:      tokens,
		CORSOrigins: cfg.CORSOrigins,
	})

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
