// Package config loads the gateway's configuration from the environment into
// one explicit struct at process start. Components receive their settings by
// injection; nothing reads the environment per request.
package config

import (
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/lifeos-home/gateway/internal/authn"
	"github.com/lifeos-home/gateway/internal/oauthsetup"
	"github.com/lifeos-home/gateway/internal/proxy"
	"github.com/lifeos-home/gateway/internal/server"
)

// Config is the full gateway configuration.
type Config struct {
	Server server.Config
	Proxy  proxy.Config
	Bypass authn.BypassConfig
	OAuth  oauthsetup.Config

	// InternalAPIKey is the shared secret proving this gateway's calls to the
	// downstream API are trusted. Gated by secrets.IsStrong before use.
	InternalAPIKey string `env:"INTERNAL_API_KEY" envDefault:""`

	// NextAuthSecret and AuthSecret both sign session cookies and bridge
	// tokens; NextAuthSecret wins when both are set.
	NextAuthSecret string `env:"NEXTAUTH_SECRET" envDefault:""`
	AuthSecret     string `env:"AUTH_SECRET" envDefault:""`

	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// SigningSecret returns the session/bridge signing secret, preferring
// NEXTAUTH_SECRET over AUTH_SECRET. Empty when neither is configured.
func (c Config) SigningSecret() string {
	if c.NextAuthSecret != "" {
		return c.NextAuthSecret
	}
	return c.AuthSecret
}

var dotenvOnce sync.Once

// Load parses environment variables into cfg, loading a .env file once per
// process if one is present.
func Load(cfg any) error {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
	return env.Parse(cfg)
}

// MustLoad is Load but panics on failure. Useful at startup.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
