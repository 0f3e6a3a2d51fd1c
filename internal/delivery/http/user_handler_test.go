package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cncsignals/internal/usecase"
)

// doJSONAs invokes handler with the JWT email claim set, as AuthMiddleware
// would after validating a token.
func doJSONAs(t *testing.T, handler echo.HandlerFunc, claimEmail, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("email", claimEmail)
	require.NoError(t, handler(c))
	return rec
}

func TestUserHandler_RejectsTokenForDifferentIdentity(t *testing.T) {
	f := newAnalysisFixture(t)
	h := NewUserHandler(f.sessions, f.usage, f.provider, usecase.DefaultDailyLimit)

	_, err := f.sessions.Register("alice@example.com", "Alice", "secret123", "")
	require.NoError(t, err)

	// A token minted for another account must not act on Alice's session.
	rec := doJSONAs(t, h.GetMe, "bob@example.com", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSONAs(t, h.Upgrade, "bob@example.com", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = doJSONAs(t, h.DeleteAccount, "bob@example.com", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, f.sessions.IsAuthenticated(), "mismatched token never mutates the session")

	user, ok := f.sessions.Current()
	require.True(t, ok)
	assert.False(t, user.IsVip)

	// The owner's token passes.
	rec = doJSONAs(t, h.GetMe, "alice@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSONAs(t, h.Upgrade, "alice@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHistoryHandler_RejectsTokenForDifferentIdentity(t *testing.T) {
	f := newAnalysisFixture(t)
	h := NewHistoryHandler(f.sessions, f.history)

	_, err := f.sessions.Register("alice@example.com", "Alice", "secret123", "")
	require.NoError(t, err)
	_, err = f.sessions.UpgradeToVip()
	require.NoError(t, err)

	rec := doJSONAs(t, h.List, "bob@example.com", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSONAs(t, h.List, "alice@example.com", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
