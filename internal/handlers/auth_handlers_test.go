package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plantpedia/plantpedia/internal/config"
	"github.com/plantpedia/plantpedia/internal/handlers"
	"github.com/plantpedia/plantpedia/internal/repository"
	"github.com/plantpedia/plantpedia/internal/service/token"
	httpserver "github.com/plantpedia/plantpedia/internal/transport/http"
)

type testApp struct {
	E      *echo.Echo
	DB     *gorm.DB
	Users  *repository.UserRepository
	Tokens *token.TokenService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	tokens, err := token.New(config.JWT{Secret: "test-secret", ExpirationMinutes: 60})
	require.NoError(t, err)

	users := &repository.UserRepository{DB: db}
	plants := &repository.PlantRepository{DB: db}

	e := echo.New()
	e.Use(echosession.Middleware(sessions.NewCookieStore([]byte("session-secret"))))

	httpserver.Register(e, &httpserver.Deps{
		DB:         db,
		Tokens:     tokens,
		CookieName: config.DefaultCookieName,
		JWTSecret:  []byte("test-secret"),
		AuthHandler: &handlers.AuthHandler{
			Users:      users,
			Tokens:     tokens,
			CookieName: config.DefaultCookieName,
		},
		PlantHandler: &handlers.PlantHandler{Plants: plants},
	})

	return &testApp{E: e, DB: db, Users: users, Tokens: tokens}
}

func (app *testApp) registerAlice(t *testing.T) uint {
	t.Helper()
	user, err := app.Users.Register(context.Background(), "alice", "password", "Nguyen", "F", time.Time{}, "")
	require.NoError(t, err)
	return user.ID
}

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.E.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, payload any) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestLoginSetsCookieAndSession(t *testing.T) {
	app := newTestApp(t)
	aliceID := app.registerAlice(t)

	rec := app.do(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "password",
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	jwtCookie := cookieByName(rec, config.DefaultCookieName)
	require.NotNil(t, jwtCookie)
	require.True(t, jwtCookie.HttpOnly)
	require.False(t, jwtCookie.Secure)
	require.WithinDuration(t, time.Now().Add(60*time.Minute), jwtCookie.Expires, 10*time.Second)

	claims, err := app.Tokens.Verify(jwtCookie.Value)
	require.NoError(t, err)
	require.Equal(t, aliceID, claims.UserID)
	require.Equal(t, "alice", claims.Username)

	// Legacy session written alongside the token: the dashboard must be
	// reachable with only the session cookie, no JWT at all.
	sessCookie := cookieByName(rec, "plantpedia_session")
	require.NotNil(t, sessCookie)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(sessCookie)
	dash := app.do(req)
	require.Equal(t, http.StatusOK, dash.Code)
	require.Contains(t, dash.Body.String(), `"alice"`)
}

func TestLoginWrongPasswordIsGeneric(t *testing.T) {
	app := newTestApp(t)
	app.registerAlice(t)

	wrongPassword := app.do(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	}))
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Nil(t, cookieByName(wrongPassword, config.DefaultCookieName))

	unknownUser := app.do(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody",
		"password": "wrong",
	}))
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)

	// Identical responses: nothing reveals whether "alice" exists.
	require.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestLoginMissingFields(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(jsonRequest(http.MethodPost, "/auth/login", map[string]string{"username": "alice"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookieAndSession(t *testing.T) {
	app := newTestApp(t)
	app.registerAlice(t)

	login := app.do(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "password",
	}))
	require.Equal(t, http.StatusOK, login.Code)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	for _, ck := range login.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := cookieByName(rec, config.DefaultCookieName)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
	require.True(t, cleared.MaxAge < 0 || cleared.Expires.Before(time.Now()))

	sess := cookieByName(rec, "plantpedia_session")
	require.NotNil(t, sess)
	require.True(t, sess.MaxAge < 0)
}

func TestLogoutIsIdempotent(t *testing.T) {
	app := newTestApp(t)

	// No prior login, no cookies at all.
	rec := app.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardRedirectsAnonymous(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderLocation), "/auth/login")
}

func TestDashboardWithTokenCookie(t *testing.T) {
	app := newTestApp(t)
	aliceID := app.registerAlice(t)

	login := app.do(jsonRequest(http.MethodPost, "/auth/login", map[string]string{
		"username": "alice",
		"password": "password",
	}))
	jwtCookie := cookieByName(login, config.DefaultCookieName)
	require.NotNil(t, jwtCookie)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(jwtCookie)
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Username string `json:"username"`
		User     struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "alice", resp.Username)
	require.Equal(t, aliceID, resp.User.ID)
}

func TestExpiredCookieClearedOnAnyRoute(t *testing.T) {
	app := newTestApp(t)

	// A token that fails verification must be dropped even on public routes.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/plants", nil)
	req.AddCookie(&http.Cookie{Name: config.DefaultCookieName, Value: "tampered"})
	rec := app.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := cookieByName(rec, config.DefaultCookieName)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
}

func TestRegisterHandler(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"username":      "alice",
		"password":      "password",
		"last_name":     "Nguyen",
		"gender":        "F",
		"date_of_birth": "1990-05-17",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	dup := app.do(jsonRequest(http.MethodPost, "/auth/register", map[string]string{
		"username": "alice",
		"password": "other",
	}))
	require.Equal(t, http.StatusConflict, dup.Code)
}
