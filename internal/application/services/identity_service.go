package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/ports"
)

const (
	identityPrefix       = "anon"
	identityEntropyBytes = 16 // 128 bits minimum
)

// IdentityService mints anonymous identifiers of the form
// anon_<unix-ms>_<32 hex chars>. The timestamp keeps identities roughly
// sortable by creation; uniqueness rests on the random suffix.
type IdentityService struct {
	clock Clock
}

func NewIdentityService(clock Clock) *IdentityService {
	return &IdentityService{clock: clockOrDefault(clock)}
}

func (s *IdentityService) Generate() (string, error) {
	buf := make([]byte, identityEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random identity bytes: %w", err)
	}
	return fmt.Sprintf("%s_%d_%s", identityPrefix, s.clock().UnixMilli(), hex.EncodeToString(buf)), nil
}

var _ ports.IdentityGenerator = (*IdentityService)(nil)
