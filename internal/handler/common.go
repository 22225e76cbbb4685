package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/repository"
)

// getUserID extracts the authenticated user's id from the Echo context.
// JWT numeric claims decode as float64; tokens minted by other tooling
// sometimes carry the subject as a string, so both are accepted.
func getUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case string:
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			return id, true
		}
	case uint64:
		return v, true
	}
	return 0, false
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// repoError maps repository sentinel errors onto HTTP responses.  Any
// unrecognized error falls through to a 500 with the given fallback
// message so internals never leak to clients.
func repoError(c echo.Context, err error, fallback string) error {
	switch err {
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case repository.ErrNoAvailability:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no rooms available for the selected dates"})
	case repository.ErrDateNotSupported:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "selected dates are outside the bookable window"})
	case repository.ErrAlreadyLinked:
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already belongs to an itinerary"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
