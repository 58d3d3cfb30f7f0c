package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ryabkov/filegallery/internal/filestore"
	"github.com/ryabkov/filegallery/internal/service"
	"github.com/ryabkov/filegallery/internal/storage/memory"
	"github.com/ryabkov/filegallery/internal/util"
)

type nopLimiter struct{}

func (nopLimiter) IsBlocked(context.Context, string) (bool, error) { return false, nil }
func (nopLimiter) RegisterFailure(context.Context, string) error   { return nil }
func (nopLimiter) Reset(context.Context, string) error             { return nil }

type testEnv struct {
	controller *Controller
	echo       *echo.Echo
	storage    *memory.Storage
	tokens     *service.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStorage()
	logger := zap.NewNop().Sugar()

	tokens := service.NewTokenService(&util.TokenConfig{
		AccessSecret:  []byte("ctl-access-secret"),
		RefreshSecret: []byte("ctl-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	})
	auth := service.NewAuthService(
		tokens,
		store,
		nopLimiter{},
		&util.AdminConfig{Email: "admin@example.com", Password: "correct-horse"},
		logger,
	)

	blobs, err := filestore.New(t.TempDir())
	require.NoError(t, err)
	gallery := service.NewGalleryService(store, blobs, logger)

	return &testEnv{
		controller: NewController(logger, auth, gallery, &util.UploadConfig{MaxUploadBytes: 1 << 20}, false),
		echo:       echo.New(),
		storage:    store,
		tokens:     tokens,
	}
}

func (env *testEnv) login(t *testing.T, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, env.controller.Login(env.echo.NewContext(req, rec))
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginSetsCookiesAndSessionRow(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.login(t, `{"email":"admin@example.com","password":"correct-horse"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.storage.Len())

	cookies := rec.Result().Cookies()
	access := findCookie(cookies, AccessCookieName)
	refresh := findCookie(cookies, RefreshCookieName)
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, "/", access.Path)
	assert.NoError(t, env.tokens.VerifyAccessToken(access.Value))
}

func TestLoginWrongCredentialsNoSession(t *testing.T) {
	env := newTestEnv(t)

	rec, err := env.login(t, `{"email":"admin@example.com","password":"wrong"}`)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 0, env.storage.Len())
	assert.Empty(t, rec.Result().Cookies())
}

func TestLoginMalformedBodyRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.login(t, `{not json`)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 0, env.storage.Len())
}

func TestRefreshEndpointRotatesCookies(t *testing.T) {
	env := newTestEnv(t)

	loginRec, err := env.login(t, `{"email":"admin@example.com","password":"correct-horse"}`)
	require.NoError(t, err)
	oldRefresh := findCookie(loginRec.Result().Cookies(), RefreshCookieName)
	require.NotNil(t, oldRefresh)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: oldRefresh.Value})
	rec := httptest.NewRecorder()
	require.NoError(t, env.controller.Refresh(env.echo.NewContext(req, rec)))

	newRefresh := findCookie(rec.Result().Cookies(), RefreshCookieName)
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)
	assert.Equal(t, 2, env.storage.Len())

	// The rotated-away token must not work a second time.
	replayReq := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	replayReq.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: oldRefresh.Value})
	replayRec := httptest.NewRecorder()
	err = env.controller.Refresh(env.echo.NewContext(replayReq, replayRec))
	assert.ErrorIs(t, err, service.ErrRefreshTokenNotFoundOrUsed)
}

func TestRefreshWithoutCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	rec := httptest.NewRecorder()
	err := env.controller.Refresh(env.echo.NewContext(req, rec))
	assert.ErrorIs(t, err, service.ErrMissingRefreshToken)
}

func TestLogoutClearsCookies(t *testing.T) {
	env := newTestEnv(t)

	loginRec, err := env.login(t, `{"email":"admin@example.com","password":"correct-horse"}`)
	require.NoError(t, err)
	refresh := findCookie(loginRec.Result().Cookies(), RefreshCookieName)
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: refresh.Value})
	rec := httptest.NewRecorder()
	require.NoError(t, env.controller.Logout(env.echo.NewContext(req, rec)))

	cleared := findCookie(rec.Result().Cookies(), RefreshCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The revoked session must not refresh anymore.
	refreshReq := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
	refreshReq.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: refresh.Value})
	refreshRec := httptest.NewRecorder()
	err = env.controller.Refresh(env.echo.NewContext(refreshReq, refreshRec))
	assert.ErrorIs(t, err, service.ErrRefreshTokenNotFoundOrUsed)
}

func TestLogoutWithGarbageToken(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	require.NoError(t, env.controller.Logout(env.echo.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
}
