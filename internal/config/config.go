// Package config loads portal and development backend settings from an
// optional wellmatch.yaml and WELLMATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"wellmatch/internal/domain"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "WELLMATCH"

// Credential store kinds.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all configuration values.
type Config struct {
	APIURL            string `mapstructure:"API_URL"`
	AuthMode          string `mapstructure:"AUTH_MODE"`
	CredentialStore   string `mapstructure:"CREDENTIAL_STORE"`
	CredentialPath    string `mapstructure:"CREDENTIAL_PATH"`
	CredentialProfile string `mapstructure:"CREDENTIAL_PROFILE"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Locale            string `mapstructure:"LOCALE"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	WhoAmIPath        string `mapstructure:"WHOAMI_PATH"`

	// Development backend.
	DevAPIAddr            string        `mapstructure:"DEVAPI_ADDR"`
	DevAPIJWTSecret       string        `mapstructure:"DEVAPI_JWT_SECRET"`
	DevAPITokenTTL        time.Duration `mapstructure:"DEVAPI_TOKEN_TTL"`
	DevAPILoginPerMinute  int           `mapstructure:"DEVAPI_LOGIN_PER_MINUTE"`
	DevAPIRequireApproval bool          `mapstructure:"DEVAPI_REQUIRE_APPROVAL"`
	DevAPISeed            bool          `mapstructure:"DEVAPI_SEED"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Mode returns the configured credential strategy.
func (c *Config) Mode() domain.AuthMode { return domain.AuthMode(c.AuthMode) }

// Load reads wellmatch.yaml from the given directories (the working
// directory and ./config when none are given), then the environment.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("wellmatch")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("AUTH_MODE", string(domain.TokenMode))
	v.SetDefault("CREDENTIAL_STORE", StoreFile)
	v.SetDefault("CREDENTIAL_PATH", defaultCredentialPath())
	v.SetDefault("CREDENTIAL_PROFILE", "default")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("LOCALE", "he")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WHOAMI_PATH", "/api/professionals/me")
	v.SetDefault("DEVAPI_ADDR", ":8080")
	v.SetDefault("DEVAPI_JWT_SECRET", "")
	v.SetDefault("DEVAPI_TOKEN_TTL", "24h")
	v.SetDefault("DEVAPI_LOGIN_PER_MINUTE", 20)
	v.SetDefault("DEVAPI_REQUIRE_APPROVAL", false)
	v.SetDefault("DEVAPI_SEED", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown enum values and incomplete store settings.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_URL %q must be an absolute URL", c.APIURL)
	}
	switch domain.AuthMode(c.AuthMode) {
	case domain.TokenMode, domain.CookieMode:
	default:
		return fmt.Errorf("AUTH_MODE %q must be token or cookie", c.AuthMode)
	}
	switch c.CredentialStore {
	case StoreFile:
		if c.CredentialPath == "" {
			return errors.New("CREDENTIAL_PATH is required for the file store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("CREDENTIAL_STORE %q must be file, postgres or memory", c.CredentialStore)
	}
	switch c.Locale {
	case "he", "en":
	default:
		return fmt.Errorf("LOCALE %q must be he or en", c.Locale)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.DevAPITokenTTL <= 0 {
		return fmt.Errorf("DEVAPI_TOKEN_TTL %s must be positive", c.DevAPITokenTTL)
	}
	if c.DevAPILoginPerMinute <= 0 {
		return fmt.Errorf("DEVAPI_LOGIN_PER_MINUTE %d must be positive", c.DevAPILoginPerMinute)
	}
	return nil
}

func defaultCredentialPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".wellmatch", "credential")
	}
	return filepath.Join(dir, "wellmatch", "credential")
}
