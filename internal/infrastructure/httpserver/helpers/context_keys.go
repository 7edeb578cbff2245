package helpers

import (
	"github.com/labstack/echo/v4"

	"github.com/king-nomura/cloudflare-workers-api-proxy/internal/core/domain/quota"
)

type ctxKey string

const (
	keyIdentity ctxKey = "anon_identity"
	keyQuota    ctxKey = "quota_decision"
)

func SetIdentity(c echo.Context, identity string) { c.Set(string(keyIdentity), identity) }
func GetIdentityRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyIdentity))
	id, ok := v.(string)
	return id, ok
}

func SetQuotaDecision(c echo.Context, d quota.Decision) { c.Set(string(keyQuota), d) }
func GetQuotaDecisionRaw(c echo.Context) (quota.Decision, bool) {
	v := c.Get(string(keyQuota))
	d, ok := v.(quota.Decision)
	return d, ok
}
