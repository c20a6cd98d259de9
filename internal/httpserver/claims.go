package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/ecommerce_api/internal/access"
)

const claimKey = "access.claim"

type claimResult struct {
	claim access.Claim
	err   error
}

// ClaimMiddleware extracts the caller's claim once per request. Extraction
// errors are kept and only surface in handlers that need the claim, so a
// malformed header does not break public reads.
func ClaimMiddleware(src access.Source) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claim, err := src.Claim(c.Request())
			c.Set(claimKey, claimResult{claim: claim, err: err})
			return next(c)
		}
	}
}

func claimOf(c echo.Context) (access.Claim, error) {
	res, ok := c.Get(claimKey).(claimResult)
	if !ok {
		return access.Claim{}, nil
	}
	return res.claim, res.err
}
