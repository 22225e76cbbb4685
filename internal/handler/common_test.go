package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestGetUserID(t *testing.T) {
	c := ctxWithQuery("")

	c.Set("user_id", float64(42)) // JWT numeric claims decode as float64
	id, ok := getUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	c.Set("user_id", "77")
	id, ok = getUserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(77), id)

	c.Set("user_id", "not-a-number")
	_, ok = getUserID(c)
	assert.False(t, ok)

	c.Set("user_id", nil)
	_, ok = getUserID(c)
	assert.False(t, ok)
}

func TestParseDateRange(t *testing.T) {
	from, to, ok, errMsg := parseDateRange(ctxWithQuery("check_in=2026-09-10&check_out=2026-09-13"))
	require.Empty(t, errMsg)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC), to)

	_, _, ok, errMsg = parseDateRange(ctxWithQuery(""))
	assert.False(t, ok)
	assert.Empty(t, errMsg)

	_, _, _, errMsg = parseDateRange(ctxWithQuery("check_in=2026-09-10"))
	assert.NotEmpty(t, errMsg)

	_, _, _, errMsg = parseDateRange(ctxWithQuery("check_in=2026-09-13&check_out=2026-09-10"))
	assert.NotEmpty(t, errMsg)

	_, _, _, errMsg = parseDateRange(ctxWithQuery("check_in=bad&check_out=2026-09-10"))
	assert.NotEmpty(t, errMsg)
}
