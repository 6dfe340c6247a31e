package main

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"wellmatch/internal/adapter/api"
	"wellmatch/internal/adapter/file"
	"wellmatch/internal/adapter/memory"
	"wellmatch/internal/adapter/postgres"
	"wellmatch/internal/app"
	"wellmatch/internal/cli"
	"wellmatch/internal/config"
	"wellmatch/internal/domain"
	"wellmatch/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wellmatch:", err)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	creds, closeCreds, err := openCredentials(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCreds()

	var opts []api.Option
	if cfg.WhoAmIPath != "" {
		opts = append(opts, api.WithWhoAmIPath(cfg.WhoAmIPath))
	}

	var (
		client   *api.Client
		strategy app.Strategy
	)
	switch cfg.Mode() {
	case domain.CookieMode:
		jar, err := cookiejar.New(nil)
		if err != nil {
			return fmt.Errorf("cookie jar: %w", err)
		}
		client, err = api.New(cfg.APIURL, log, append(opts, api.WithCookieJar(jar))...)
		if err != nil {
			return err
		}
		strategy = app.NewCookieStrategy(creds, jar, client.BaseURL())
	default:
		token := app.NewTokenStrategy(creds)
		client, err = api.New(cfg.APIURL, log, append(opts, api.WithBearer(token))...)
		if err != nil {
			return err
		}
		strategy = token
	}

	log.Info("portal starting",
		zap.String("api_url", cfg.APIURL),
		zap.String("auth_mode", cfg.AuthMode),
		zap.String("credential_store", cfg.CredentialStore),
	)

	portal := app.NewPortal(client, strategy, app.NewMessages(app.Locale(cfg.Locale)), log)
	return cli.New(portal, os.Stdin, os.Stdout, log).Run(ctx)
}

// openCredentials returns the configured credential store and a func
// releasing it.
func openCredentials(ctx context.Context, cfg *config.Config) (domain.CredentialStore, func(), error) {
	switch cfg.CredentialStore {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return postgres.NewCredentialStore(db, cfg.CredentialProfile), func() { _ = db.Close() }, nil
	case config.StoreMemory:
		return memory.NewCredentialStore(), func() {}, nil
	default:
		return file.NewCredentialStore(cfg.CredentialPath), func() {}, nil
	}
}
