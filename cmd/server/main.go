package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/quadvote/quadvote/internal/api/http"
	"github.com/quadvote/quadvote/internal/application/budget"
	"github.com/quadvote/quadvote/internal/application/identity"
	"github.com/quadvote/quadvote/internal/application/voting"
	"github.com/quadvote/quadvote/internal/config"
	"github.com/quadvote/quadvote/internal/infrastructure/postgres"
	"github.com/quadvote/quadvote/internal/infrastructure/sse"
	"github.com/quadvote/quadvote/internal/migrations"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, migrations.FS()); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	pollRepo := postgres.NewPollRepository(pool)
	participantRepo := postgres.NewParticipantRepository(pool)

	// infrastructure
	sseHub := sse.NewHub()
	renderer := sse.NewRenderer(sseHub, logger)

	// services
	budgetPolicy, err := budget.NewPolicy(cfg.TicketFormula)
	if err != nil {
		log.Fatalf("ticket formula error: %v", err)
	}
	votingSvc := voting.NewService(pollRepo, renderer, budgetPolicy, cfg.VoteRetryAttempts, logger)
	identitySvc := identity.NewService(participantRepo, logger)

	// API server
	apiServer := httpapi.NewServer(votingSvc, identitySvc, sseHub)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sseHub.Stop()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
