package usage_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/usage"
)

func TestDayKey_IsUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC
	loc := time.FixedZone("UTC-5", -5*3600)
	local := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	require.Equal(t, "2024-03-11", usage.DayKey(local))
}

func TestRecord_TouchInitializesBuckets(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	var r usage.Record // zero value, nil map
	r.Touch(now)
	require.EqualValues(t, 1, r.TotalRequests)
	require.EqualValues(t, 1, r.DailyRequests["2024-03-10"])
}

func TestRecord_PruneDropsUnparseableKeys(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	r := usage.NewRecord(now)
	r.Touch(now)
	r.DailyRequests["garbage"] = 7

	r.Prune(now.Add(-720 * time.Hour))
	require.NotContains(t, r.DailyRequests, "garbage")
	require.Contains(t, r.DailyRequests, "2024-03-10")
}
