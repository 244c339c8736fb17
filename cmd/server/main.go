package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mpetrov/screencast/internal/api"
	"github.com/mpetrov/screencast/internal/bunny"
	"github.com/mpetrov/screencast/internal/catalog"
	"github.com/mpetrov/screencast/internal/config"
	"github.com/mpetrov/screencast/internal/database"
	"github.com/mpetrov/screencast/internal/logger"
	"github.com/mpetrov/screencast/internal/session"
	"github.com/mpetrov/screencast/internal/upload"
)

const listingCacheSize = 128

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg)

	db, err := database.NewDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.NewMigrator(db, log).Run(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	videos := database.NewVideoRepository(db)
	users := database.NewUserRepository(db)
	pending := database.NewPendingUploadRepository(db)

	host := bunny.NewClient(cfg)

	cache, err := catalog.NewPageCache(listingCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build listing cache")
	}
	catalogSvc := catalog.NewService(cfg, videos, users, host, cache, log)

	issuer := upload.NewIssuer(cfg, host, pending, log)
	transfer := upload.NewTransferer(cfg)
	limiter := upload.NewFixedWindowLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	orchestrator := upload.NewOrchestrator(cfg, issuer, transfer, host, videos, pending, limiter, cache, log)

	sessions := session.NewHTTPProvider(cfg)
	handlers := api.NewHandlers(cfg, orchestrator, catalogSvc, log)
	router := api.NewRouter(handlers, sessions, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := upload.NewSweeper(pending, host, cfg.SweepInterval, cfg.SweepTTL, log)
	go sweeper.Run(ctx)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
