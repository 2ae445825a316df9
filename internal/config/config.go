package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MarcoTuMD/Template-Admin/internal/session"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL"`

	KeycloakIssuer        string `env:"KEYCLOAK_ISSUER"`
	KeycloakClientID      string `env:"KEYCLOAK_CLIENT_ID"`
	KeycloakRedirectURL   string `env:"KEYCLOAK_REDIRECT_URL"`
	KeycloakPublicBaseURL string `env:"KEYCLOAK_PUBLIC_BASE_URL"`

	RedisAddr     string `env:"REDIS_ADDR,required,notEmpty"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN,required,notEmpty"`

	TokenSigningKey string        `env:"TOKEN_SIGNING_KEY,required,notEmpty"`
	TokenIssuer     string        `env:"TOKEN_ISSUER" envDefault:"keystone"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	// SessionTTL bounds provider-side sessions; the browser flag lives 7 days.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// CookieSecure must stay on: the client cookie uses the __Host- prefix,
	// which browsers drop without Secure.
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"true"`
	HomePath      string        `env:"HOME_PATH" envDefault:"/"`
	ClientIdleTTL time.Duration `env:"CLIENT_IDLE_TTL" envDefault:"30m"`
}

// GoogleEnabled reports whether all Google OIDC settings are present.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" && c.GoogleRedirectURL != ""
}

// KeycloakEnabled reports whether all Keycloak OIDC settings are present.
func (c Config) KeycloakEnabled() bool {
	return c.KeycloakIssuer != "" && c.KeycloakClientID != "" &&
		c.KeycloakRedirectURL != "" && c.KeycloakPublicBaseURL != ""
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if len(cfg.TokenSigningKey) < 32 {
		return Config{}, fmt.Errorf("TOKEN_SIGNING_KEY must be at least 32 bytes")
	}

	if !cfg.CookieSecure {
		return Config{}, fmt.Errorf("COOKIE_SECURE=false is not supported: %s requires Secure", session.ClientCookieName)
	}

	return cfg, nil
}
