package token

import "errors"

var (
	// ErrMissingSigningKey is returned when a service is created without a key.
	ErrMissingSigningKey = errors.New("token: signing key is required")

	// ErrInvalidToken is returned for malformed tokens or nbf validation failures.
	ErrInvalidToken = errors.New("token: invalid token")

	// ErrExpiredToken is returned when the token's exp claim is in the past.
	ErrExpiredToken = errors.New("token: token expired")

	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("token: invalid signature")

	// ErrUnexpectedSigningMethod is returned when the token header declares an
	// algorithm other than HS256.
	ErrUnexpectedSigningMethod = errors.New("token: unexpected signing method")
)
