package middleware

// identity.go holds helpers shared across middleware files for pulling
// the authenticated user out of the Echo context.

import "github.com/labstack/echo/v4"

// currentUserID returns the user id stored by JWTAuth, or "anon" for
// unauthenticated requests.  Rate-limit keys use this so logged-in
// users get per-user buckets instead of sharing one per IP.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
