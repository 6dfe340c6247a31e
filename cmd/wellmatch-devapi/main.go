package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	adapthttp "wellmatch/internal/adapter/http"
	"wellmatch/internal/adapter/memory"
	"wellmatch/internal/config"
	"wellmatch/internal/devapi"
	"wellmatch/internal/observability"
)

const revocationSweep = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wellmatch-devapi:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := observability.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	secret := []byte(cfg.DevAPIJWTSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("jwt secret: %w", err)
		}
		log.Warn("DEVAPI_JWT_SECRET not set, tokens will not survive a restart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := memory.New()
	revoked := db.NewRevocationRepo()
	auth := devapi.NewAuthService(db, revoked, secret, cfg.DevAPITokenTTL)
	if cfg.DevAPISeed {
		demo, err := devapi.SeedDemo(ctx, auth, db)
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("demo data seeded",
			zap.String("admin", demo.Admin.Email),
			zap.String("professional", demo.Professional.Email),
		)
	}

	h := adapthttp.New(auth, db, db, log, adapthttp.Options{
		RequireApproval: cfg.DevAPIRequireApproval,
		LoginPerMinute:  cfg.DevAPILoginPerMinute,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.DevAPIAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		t := time.NewTicker(revocationSweep)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := revoked.DeleteExpired(ctx); err != nil {
					log.Warn("sweep revoked tokens", zap.Error(err))
				}
			}
		}
	}()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
