package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/n1fty/cms/internal/api"
	"github.com/n1fty/cms/internal/api/handler"
	"github.com/n1fty/cms/internal/core/ports"
	"github.com/n1fty/cms/internal/core/service"
	redisdb "github.com/n1fty/cms/internal/infrastructure/db/redis"
	"github.com/n1fty/cms/internal/pkg/security"
	"github.com/n1fty/cms/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API.

The store is migrated (postgres) or indexed (mongo) before the listener
opens. When REDIS_ADDR is set, POST /api/clients honours Idempotency-Key.`,
		Args: cobra.NoArgs,
		RunE: serveCommand,
	}
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, log, err := loadConfig(ctx, true)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg, logger.Component("store"), true)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("store close failed")
		}
	}()

	health := map[string]handler.Pinger{"database": st.pinger}

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		keys := redisdb.NewIdempotencyStore(rdb)
		idem = keys
		health["redis"] = keys
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	tokens := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiresIn)
	authService := service.NewAuthService(st.users, security.NewBcryptHasher(cfg.Auth.BcryptCost), tokens, logger.Component("auth"))
	clientService := service.NewClientService(st.clients, idem, cfg.Redis.IdempotencyTTL, logger.Component("clients"))
	dashboardService := service.NewDashboardService(st.clients, st.users)

	e := api.NewRouter(api.Dependencies{
		Logger:      logger.Component("http"),
		Development: cfg.IsDevelopment(),
		CORSOrigin:  cfg.CORSOrigin,
		FrontendDir: cfg.FrontendDir,
		Auth:        authService,
		Clients:     clientService,
		Dashboard:   dashboardService,
		Tokens:      tokens,
		Users:       st.users,
		Health:      health,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
