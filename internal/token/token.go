// Package token implements the compact HS256-signed envelope used for session
// cookies and Matrix bridge handoff: three base64url JSON segments joined by
// dots, signed with HMAC-SHA256. Tokens are verified, never decrypted, and the
// wire format must stay stable for the external consumers holding the same
// secret.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Service generates and parses signed tokens with a single symmetric key.
type Service struct {
	signingKey []byte
	now        func() time.Time
}

// header is the fixed token header. Field order matters: the serialized form
// must be byte-identical across mints for deterministic output.
type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// temporalClaims probes only the registered time claims during Parse.
// Pointers distinguish absent claims from zero values.
type temporalClaims struct {
	ExpiresAt *int64 `json:"exp"`
	NotBefore *int64 `json:"nbf"`
}

// New creates a Service with the given signing key.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}
	return &Service{signingKey: signingKey, now: time.Now}, nil
}

// NewFromString creates a Service from a string secret.
func NewFromString(signingKey string) (*Service, error) {
	return New([]byte(signingKey))
}

// WithClock overrides the time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Generate encodes claims into a signed token. Output is deterministic for
// identical claims and key.
func (s *Service) Generate(claims any) (string, error) {
	headerJSON, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", fmt.Errorf("token: marshal header: %w", err)
	}

	payloadJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("token: marshal claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) +
		"." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(s.sign(signingInput)), nil
}

// Parse verifies the token signature and temporal claims, then unmarshals the
// payload into claims. An exp claim at or before the current time yields
// ErrExpiredToken; a future nbf yields ErrInvalidToken.
func (s *Service) Parse(tokenString string, claims any) error {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	var h header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return ErrInvalidToken
	}
	if h.Alg != "HS256" {
		return ErrUnexpectedSigningMethod
	}

	signature, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return ErrInvalidToken
	}
	if !hmac.Equal(signature, s.sign(parts[0]+"."+parts[1])) {
		return ErrInvalidSignature
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}

	var tc temporalClaims
	if err := json.Unmarshal(payloadJSON, &tc); err != nil {
		return ErrInvalidToken
	}
	now := s.now().Unix()
	if tc.ExpiresAt != nil && *tc.ExpiresAt <= now {
		return ErrExpiredToken
	}
	if tc.NotBefore != nil && *tc.NotBefore > now {
		return ErrInvalidToken
	}

	if err := json.Unmarshal(payloadJSON, claims); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func (s *Service) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}
