// Package oauthsetup stores OAuth provider credentials submitted through the
// guarded first-run setup endpoint. Credentials land in a runtime file with
// owner-only permissions; environment-provided credentials take precedence
// when reporting provider status.
package oauthsetup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config provides environment-based configuration for the setup flow.
type Config struct {
	// SetupToken guards credential writes. POST is refused outright when the
	// token is unset.
	SetupToken string `env:"OAUTH_SETUP_TOKEN" envDefault:""`

	// CredentialsFile is where submitted credentials are persisted.
	CredentialsFile string `env:"OAUTH_CREDENTIALS_FILE" envDefault:".oauth.runtime.json"`

	// Environment-provided provider credentials. When set they win over the
	// runtime file for status reporting.
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID" envDefault:""`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET" envDefault:""`
	AppleClientID      string `env:"APPLE_CLIENT_ID" envDefault:""`
	AppleClientSecret  string `env:"APPLE_CLIENT_SECRET" envDefault:""`
}

// Credentials is the persisted credential set.
type Credentials struct {
	GoogleClientID     string `json:"googleClientId"`
	GoogleClientSecret string `json:"googleClientSecret"`
	AppleClientID      string `json:"appleClientId"`
	AppleClientSecret  string `json:"appleClientSecret"`
}

// ProviderStatus reports which sign-in providers have a full credential pair.
type ProviderStatus struct {
	Google bool `json:"google"`
	Apple  bool `json:"apple"`
}

// Store persists credentials to a runtime file.
type Store struct {
	path string
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes credentials with owner-only permissions.
func (s *Store) Save(creds Credentials) error {
	payload, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("oauthsetup: marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("oauthsetup: write %s: %w", s.path, err)
	}
	return nil
}

// Load reads previously saved credentials. A missing file is not an error;
// it returns the zero value.
func (s *Store) Load() (Credentials, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, nil
		}
		return Credentials{}, fmt.Errorf("oauthsetup: read %s: %w", s.path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(payload, &creds); err != nil {
		return Credentials{}, fmt.Errorf("oauthsetup: parse %s: %w", s.path, err)
	}
	return creds, nil
}

// Status merges environment and stored credentials into provider flags.
func Status(cfg Config, stored Credentials) ProviderStatus {
	googleID := firstNonEmpty(cfg.GoogleClientID, stored.GoogleClientID)
	googleSecret := firstNonEmpty(cfg.GoogleClientSecret, stored.GoogleClientSecret)
	appleID := firstNonEmpty(cfg.AppleClientID, stored.AppleClientID)
	appleSecret := firstNonEmpty(cfg.AppleClientSecret, stored.AppleClientSecret)

	return ProviderStatus{
		Google: googleID != "" && googleSecret != "",
		Apple:  appleID != "" && appleSecret != "",
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
