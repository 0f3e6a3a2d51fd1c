package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cncsignals/internal/repository"
	"cncsignals/internal/storage"
	"cncsignals/internal/usecase"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *usecase.SessionService) {
	t.Helper()

	store := storage.NewMemoryStore()
	sessions := usecase.NewSessionService(
		repository.NewUserRepository(store),
		repository.NewSessionRepository(store),
		repository.NewHistoryRepository(store),
		time.Now,
	)
	return NewAuthHandler(sessions), sessions
}

func doJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec
}

func TestAuthHandler_Register(t *testing.T) {
	h, sessions := newAuthHandler(t)

	rec := doJSON(t, h.Register, `{"email":"alice@example.com","name":"Alice","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["token"])
	user, ok := data["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password")

	assert.True(t, sessions.IsAuthenticated())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := doJSON(t, h.Register, `{"email":"alice@example.com","name":"Alice"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.Register, `{"email":"alice@example.com","name":"Alice","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := doJSON(t, h.Register, `{"email":"alice@example.com","name":"Alice","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.Register, `{"email":"alice@example.com","name":"Imposter","password":"secret123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	h, sessions := newAuthHandler(t)
	doJSON(t, h.Register, `{"email":"alice@example.com","name":"Alice","password":"secret123"}`)
	require.NoError(t, sessions.Logout())

	rec := doJSON(t, h.Login, `{"email":"alice@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, sessions.IsAuthenticated())

	rec = doJSON(t, h.Login, `{"email":"alice@example.com","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sessions.IsAuthenticated())
}

func TestAuthHandler_Logout(t *testing.T) {
	h, sessions := newAuthHandler(t)
	doJSON(t, h.Register, `{"email":"alice@example.com","name":"Alice","password":"secret123"}`)

	rec := doJSON(t, h.Logout, ``)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, sessions.IsAuthenticated())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
