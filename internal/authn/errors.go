package authn

import "errors"

var (
	// ErrSessionMissing is returned when no session can be resolved from the
	// request and no bypass identity applies.
	ErrSessionMissing = errors.New("authn: session missing")

	// ErrSessionExpired is returned when the session token carries an expiry
	// at or before the current time. Distinct from ErrSessionMissing so the
	// caller can prompt re-authentication instead of treating it as fatal.
	ErrSessionExpired = errors.New("authn: session expired")

	// ErrBypassForbidden indicates bypass wiring is present in a production
	// environment. This is a deployment defect, not an authentication failure.
	ErrBypassForbidden = errors.New("authn: dev auth bypass is forbidden in production")

	// ErrBypassEmailMissing indicates the bypass flag is enabled without a
	// configured identity.
	ErrBypassEmailMissing = errors.New("authn: dev auth bypass enabled but no email configured")
)
