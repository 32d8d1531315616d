package token

// SessionClaims are the claims carried by the session cookie token issued by
// the sign-in flow. Absent claims stay zero-valued.
type SessionClaims struct {
	Subject   string `json:"sub,omitempty"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// BridgePayload is the claim set minted for the Matrix bridge service. Field
// order is part of the wire contract: the serialized payload, and therefore
// the signature, must be reproducible for identical inputs.
type BridgePayload struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
