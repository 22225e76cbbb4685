package handler

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynext/flynext-server/internal/config"
	"github.com/flynext/flynext-server/internal/repository"
	"github.com/flynext/flynext-server/internal/utils"
)

func TestLogoutRevokesAllSessionsForBearer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{JWTSecret: "secret"}
	h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))

	tok, err := utils.NewAccessToken("secret", 42, "CUSTOMER", 5)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = ?")).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	// No refresh token in body or cookie; the bearer token alone must
	// identify whose sessions to revoke.
	c, rec := newJSONContext(http.MethodPost, "/api/auth/logout", "")
	c.Request().Header.Set("Authorization", "Bearer "+tok.Token)

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutRejectsAnonymousRequest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewAuthHandler(config.Config{JWTSecret: "secret"},
		repository.NewUserRepo(db), repository.NewTokenRepo(db))

	c, rec := newJSONContext(http.MethodPost, "/api/auth/logout", "")

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
