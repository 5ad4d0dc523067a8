// Command migrate copies media from the local uploads directory into object
// storage and rewrites stored references to the new keys.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/bilgisen/ujala/internal/config"
	"github.com/bilgisen/ujala/internal/logger"
	"github.com/bilgisen/ujala/internal/migrate"
	"github.com/bilgisen/ujala/internal/objectstore"
	"github.com/bilgisen/ujala/internal/repository"
	"github.com/bilgisen/ujala/internal/storage"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "list files without uploading")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: true,
	}); err != nil {
		panic(err)
	}
	log := logger.Get()

	if !cfg.StorageEnabled() {
		log.Fatal().Msg("OBJECT_STORAGE and R2_BUCKET must be set to migrate uploads")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := repository.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error closing MongoDB client")
		}
	}()

	store, err := objectstore.NewR2(ctx, objectstore.R2Config{
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
	local, err := storage.NewLocal(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadsDir).Msg("Failed to open uploads directory")
	}

	m := migrate.New(repository.NewMongoNews(db), repository.NewMongoUsers(db), store, local, cfg.MaxConcurrency)
	m.DryRun = *dryRun
	rep, err := m.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Migration stopped")
	}
	log.Info().
		Int("files", rep.Files).
		Int("uploaded", rep.Uploaded).
		Int("removed", rep.Removed).
		Int("news", rep.News).
		Int("users", rep.Users).
		Strs("failed", rep.Failed).
		Msg("Migration finished")
	if err != nil || len(rep.Failed) > 0 {
		os.Exit(1)
	}
}
