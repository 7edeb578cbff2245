package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	config "github.com/king-nomura/cloudflare-workers-api-proxy/configs"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/auth"
	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

// CredentialService issues and verifies anonymous bearer credentials.
// Tokens are HS256-signed and fully self-contained; nothing is stored
// server-side, so a credential cannot be revoked before its expiry.
type CredentialService struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
	logger *logrus.Logger
}

func NewCredentialService(cfg *config.CredentialConfig, clock Clock, logger *logrus.Logger) *CredentialService {
	return &CredentialService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		clock:  clockOrDefault(clock),
		logger: logger,
	}
}

func (s *CredentialService) Issue(identity string) (*auth.IssuedCredential, error) {
	now := s.clock()
	expiresAt := now.Add(s.ttl)

	claims := &auth.Claims{
		UserID: identity,
		Kind:   auth.KindAnonymous,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign credential: %w", err)
	}

	return &auth.IssuedCredential{
		Token:     signed,
		Identity:  identity,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *CredentialService) Verify(tokenString string) (*auth.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock))

	if err != nil {
		return nil, s.classifyError(err)
	}

	claims, ok := token.Claims.(*auth.Claims)
	if !ok || !token.Valid {
		return nil, auth.ErrMalformedToken
	}

	if claims.Kind != auth.KindAnonymous {
		return nil, auth.ErrWrongKind
	}

	return claims, nil
}

// classifyError maps jwt parse failures onto the verification taxonomy.
// The library checks shape, then signature, then expiry, which matches
// the order the taxonomy requires.
func (s *CredentialService) classifyError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return auth.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return auth.ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return auth.ErrExpired
	default:
		if s.logger != nil {
			s.logger.WithError(err).Debug("unclassified token verification failure")
		}
		return auth.ErrMalformedToken
	}
}

var _ ports.CredentialService = (*CredentialService)(nil)
