package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KindAnonymous is the credential kind issued to anonymous identities.
// Verification rejects any other kind.
const KindAnonymous = "anonymous"

// Claims is the signed payload embedded in an anonymous bearer token.
// The wire field names (userId, type, iat, exp) are the persisted token
// format consumed by existing clients and must not change.
type Claims struct {
	UserID string `json:"userId"`
	Kind   string `json:"type"`
	jwt.RegisteredClaims
}

// IssuedCredential is the result of signing a new anonymous credential.
// The issuing side keeps no copy; the token is the only record.
type IssuedCredential struct {
	Token     string
	Identity  string
	ExpiresAt time.Time
}

// TokenResponse is the body returned by the token issuance endpoint.
type TokenResponse struct {
	Token     string        `json:"token"`
	UserID    string        `json:"userId"`
	ExpiresAt int64         `json:"expiresAt"` // ms since epoch
	RateLimit RateLimitInfo `json:"rateLimit"`
}

// RateLimitInfo advertises the quota policy to the client.
type RateLimitInfo struct {
	MaxRequests int   `json:"maxRequests"`
	WindowMs    int64 `json:"windowMs"`
}
