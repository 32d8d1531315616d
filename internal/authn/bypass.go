package authn

import "strings"

// productionEnv is the environment name in which bypass wiring is fatal.
const productionEnv = "production"

// BypassConfig describes the dev auth bypass, a configuration-gated mechanism
// that treats unauthenticated requests as a fixed identity. Intended only for
// local development.
type BypassConfig struct {
	Enabled     bool   `env:"ALLOW_DEV_AUTH_BYPASS" envDefault:"false"`
	Email       string `env:"DEV_AUTH_BYPASS_EMAIL" envDefault:""`
	Environment string `env:"APP_ENV" envDefault:"development"`
}

// Resolve decides whether an unauthenticated request may assume the bypass
// identity. Any bypass wiring in production is an error regardless of whether
// a real session would have resolved later; leaving the wiring in place is
// itself the defect being guarded against.
func (c BypassConfig) Resolve() (string, error) {
	configured := c.Enabled || strings.TrimSpace(c.Email) != ""
	if strings.EqualFold(c.Environment, productionEnv) && configured {
		return "", ErrBypassForbidden
	}
	if !c.Enabled {
		return "", nil
	}

	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		return "", ErrBypassEmailMissing
	}
	return email, nil
}
