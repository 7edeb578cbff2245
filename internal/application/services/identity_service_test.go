package services_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	impl "github.com/king-nomura/cloudflare-workers-api-proxy/internal/application/services"
)

func TestIdentityService_Format(t *testing.T) {
	issued := time.UnixMilli(1700000000000)
	svc := impl.NewIdentityService(func() time.Time { return issued })

	id, err := svc.Generate()
	require.NoError(t, err)

	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	require.Equal(t, "anon", parts[0])

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	require.Equal(t, issued.UnixMilli(), ts)

	// 16 random bytes hex-encoded
	require.Len(t, parts[2], 32)
	require.NotEqual(t, strings.Repeat("0", 32), parts[2])
}

func TestIdentityService_Uniqueness(t *testing.T) {
	trials := 1_000_000
	if testing.Short() {
		trials = 10_000
	}

	svc := impl.NewIdentityService(nil)
	seen := make(map[string]struct{}, trials)
	for i := 0; i < trials; i++ {
		id, err := svc.Generate()
		if err != nil {
			t.Fatalf("unexpected error at trial %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate identity after %d trials: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestIdentityService_ConsecutiveCallsDiffer(t *testing.T) {
	// Even with a frozen clock the random suffix must differ.
	frozen := time.UnixMilli(1700000000000)
	svc := impl.NewIdentityService(func() time.Time { return frozen })

	a, err := svc.Generate()
	require.NoError(t, err)
	b, err := svc.Generate()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
