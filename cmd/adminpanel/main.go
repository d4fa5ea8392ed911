package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/adminpanel/internal/account"
	"github.com/gosuda/adminpanel/internal/audit"
	"github.com/gosuda/adminpanel/internal/auth"
	"github.com/gosuda/adminpanel/internal/config"
	"github.com/gosuda/adminpanel/internal/domain"
	"github.com/gosuda/adminpanel/internal/idempotency"
	"github.com/gosuda/adminpanel/internal/observability/tracing"
	"github.com/gosuda/adminpanel/internal/purge"
	"github.com/gosuda/adminpanel/internal/server"
	"github.com/gosuda/adminpanel/internal/store/postgres"
	redisstore "github.com/gosuda/adminpanel/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogging(cfg.Log)

	shutdownTracing, err := tracing.Init(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Environment, cfg.Telemetry.OTLPInsecure)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	// Connect to Redis.
	rdb, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var idemRepo domain.IdempotencyRepository = store.Idempotency()
	if cfg.Idempotency.Backend == config.IdempotencyRedis {
		idemRepo = redisstore.NewIdempotencyRepo(rdb)
	}
	log.Info().Str("backend", cfg.Idempotency.Backend).Msg("idempotency store selected")

	purger := purge.NewOrchestrator(
		store.Partitions(),
		store.Profiles(),
		store.Blobs(),
		store.Accounts(),
		purge.Options{
			Partitions:   cfg.Purge.Partitions,
			PageSize:     cfg.Purge.PageSize,
			UploadPrefix: cfg.Purge.UploadPrefix,
		},
	)

	accounts := account.NewService(account.Deps{
		Accounts: store.Accounts(),
		Profiles: store.Profiles(),
		Admins:   store.Admins(),
		Blocks:   store.Blocks(),
		Guard:    idempotency.NewGuard(idemRepo),
		Purger:   purger,
		Audit:    audit.NewRecorder(store.Audit()),
		Events:   rdb,
	})

	authSvc := auth.NewService(store.Accounts(), store.Admins(), cfg.JWT.Secret, cfg.JWT.AccessTTL)
	verifier := auth.NewVerifier(cfg.JWT.Secret, store.Accounts(), store.Admins())

	if cfg.Admin.BootstrapSecret == "" {
		log.Warn().Msg("ADMINPANEL_ADMIN_BOOTSTRAP_SECRET unset; admin creation endpoint disabled")
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(ctx, cfg, server.Deps{
		Accounts: accounts,
		Auth:     authSvc,
		Verifier: verifier,
		Health: map[string]server.Pinger{
			"postgres": store,
			"redis":    rdb,
		},
	})

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
