package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/palmora/reading-gate/internal/capability"
	"github.com/palmora/reading-gate/internal/config"
	handlerhttp "github.com/palmora/reading-gate/internal/handler/http"
	"github.com/palmora/reading-gate/internal/identity"
	"github.com/palmora/reading-gate/internal/logger"
	"github.com/palmora/reading-gate/internal/ratelimit"
	"github.com/palmora/reading-gate/internal/server"
	"github.com/palmora/reading-gate/internal/session"
	"github.com/palmora/reading-gate/internal/store"
	"github.com/palmora/reading-gate/internal/unlock"
	"github.com/palmora/reading-gate/internal/workers"
	"github.com/palmora/reading-gate/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("reading-gate")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}

	if err := migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	storages := store.NewStorages(db, log)

	capabilities, err := capability.New(cfg.App, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating capability signer")
	}

	bucketStore := newBucketStore(cfg, log)
	limiter := ratelimit.NewLimiter(bucketStore, log)

	sessions := session.NewMemoryStore()

	identityClient, err := newIdentityClient(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating identity client")
	}

	identityManager := identity.NewManager(
		identityClient,
		sessions,
		storages.ReadingRepository,
		cfg.Identity,
		cfg.App.SiteBaseURL,
		log,
	)

	unlockService := unlock.NewService(
		storages.ReadingRepository,
		cfg.App.FreeUnlockLimit,
		cfg.App.OfferingsURL,
		log,
	)

	handler := handlerhttp.NewHandler(
		identityManager,
		unlockService,
		capabilities,
		limiter,
		storages.ReadingRepository,
		cfg.RateLimit,
		log,
	)

	sweepers := []workers.Sweeper{sessions}
	if mem, ok := bucketStore.(*ratelimit.MemoryStore); ok {
		sweepers = append(sweepers, mem)
	}
	workers.NewWorkers(cfg.Workers, log, sweepers...).Run()

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// newBucketStore picks the rate-limit backend: Redis when an address is
// configured, the in-process store otherwise.
func newBucketStore(cfg *config.StructuredConfig, log *logger.Logger) ratelimit.BucketStore {
	if cfg.Storage.Redis.Addr == "" {
		log.Info().Msg("rate limiting on in-memory buckets")
		return ratelimit.NewMemoryStore()
	}

	log.Info().Str("addr", cfg.Storage.Redis.Addr).Msg("rate limiting on redis")
	return ratelimit.NewRedisStore(redis.NewClient(&redis.Options{
		Addr:     cfg.Storage.Redis.Addr,
		Password: cfg.Storage.Redis.Password,
		DB:       cfg.Storage.Redis.Database,
	}))
}

// newIdentityClient returns a no-op stub while the integration is disabled
// so the rest of the wiring stays uniform.
func newIdentityClient(cfg *config.StructuredConfig, log *logger.Logger) (identity.Client, error) {
	if cfg.Identity.Disabled {
		log.Warn().Msg("identity integration is disabled")
		return identity.Disabled(), nil
	}
	return identity.NewClient(cfg.Identity, log)
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
