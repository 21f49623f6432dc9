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

	"github.com/baharkarakas/user-directory/internal/api"
	"github.com/baharkarakas/user-directory/internal/auth"
	"github.com/baharkarakas/user-directory/internal/config"
	"github.com/baharkarakas/user-directory/internal/logger"
	"github.com/baharkarakas/user-directory/internal/metrics"
	"github.com/baharkarakas/user-directory/internal/repository/memory"
	"github.com/baharkarakas/user-directory/internal/services"
	"github.com/baharkarakas/user-directory/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	if cfg.InsecureSecret {
		log.Warn("JWT_SECRET not set, signing tokens with the built-in dev key", "env", cfg.Env)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.Error("password hasher", "err", err)
		os.Exit(1)
	}
	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, time.Now)
	if err != nil {
		log.Error("token manager", "err", err)
		os.Exit(1)
	}

	repos := memory.NewRepositories()
	wp := worker.NewPool(cfg.HashWorkers)
	defer wp.Stop()

	userSvc := services.NewUserService(repos.Users, hasher, tokens, wp, time.Now, log)

	metrics.Init()
	r := api.NewRouter(cfg, log, userSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env, "token_ttl", cfg.TokenTTL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}
