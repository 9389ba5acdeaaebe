package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/plantpedia/plantpedia/internal/auth"
	"github.com/plantpedia/plantpedia/internal/events"
	"github.com/plantpedia/plantpedia/internal/logging"
	"github.com/plantpedia/plantpedia/internal/middleware/jwtcookie"
	"github.com/plantpedia/plantpedia/internal/repository"
	"github.com/plantpedia/plantpedia/internal/service/token"
	"github.com/plantpedia/plantpedia/internal/session"
)

// One message for both unknown-username and wrong-password so responses
// never confirm that an account exists.
const invalidCredentialsMsg = "invalid username or password"

type AuthHandler struct {
	Users      *repository.UserRepository
	Tokens     *token.TokenService
	CookieName string
	Producer   *events.Producer
}

// createCookie builds the token cookie. Over TLS it is Secure with strict
// same-site; over plain HTTP (local development) it degrades to Lax so the
// cookie still round-trips.
func createCookie(name, value string, exp time.Time, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		cookie.SameSite = http.SameSiteStrictMode
	}
	return cookie
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, events.UserTopic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka_publish_error", "error", err)
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, err := h.Users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("login_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, invalidCredentialsMsg)
	}

	signed, exp, err := h.Tokens.Issue(user, req.Username)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("token_issue_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	secure := c.Request().TLS != nil || c.Scheme() == "https"
	c.SetCookie(createCookie(h.CookieName, signed, exp, secure))

	// Legacy session kept in sync for pre-token consumers.
	if err := session.SetUser(c, user.ID, req.Username); err != nil {
		logging.FromContext(c.Request().Context()).Warn("session_write_error", "error", err)
	}

	h.publish(c, strconv.FormatUint(uint64(user.ID), 10), map[string]interface{}{
		"type":     "user_logged_in",
		"user_id":  user.ID,
		"username": req.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"token":      signed,
		"expires_at": exp,
		"user_id":    user.ID,
		"username":   req.Username,
	})
}

// Logout clears the token cookie and the legacy session. It has no
// precondition and never fails from the caller's point of view.
func (h *AuthHandler) Logout(c echo.Context) error {
	jwtcookie.ClearCookie(c, h.CookieName)
	if err := session.Clear(c); err != nil {
		logging.FromContext(c.Request().Context()).Warn("session_clear_error", "error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username    string `json:"username" form:"username"`
		Password    string `json:"password" form:"password"`
		LastName    string `json:"last_name" form:"last_name"`
		Gender      string `json:"gender" form:"gender"`
		DateOfBirth string `json:"date_of_birth" form:"date_of_birth"`
		AvatarURL   string `json:"avatar_url" form:"avatar_url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	var dob time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
		}
		dob = parsed
	}

	user, err := h.Users.Register(c.Request().Context(), req.Username, req.Password, req.LastName, req.Gender, dob, req.AvatarURL)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, "username already exists")
		}
		logging.FromContext(c.Request().Context()).Error("register_error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "registration failed")
	}

	h.publish(c, strconv.FormatUint(uint64(user.ID), 10), map[string]interface{}{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": req.Username,
	})

	return c.JSON(http.StatusCreated, user)
}

// Dashboard is the landing page for a logged-in admin. It exercises the
// full resolver path including the login redirect.
func (h *AuthHandler) Dashboard(c echo.Context) error {
	if auth.RequireLogin(c) {
		return nil
	}

	user := auth.CurrentUser(c, h.Users)
	if user == nil {
		return c.Redirect(http.StatusFound, auth.LoginPath)
	}
	username, _ := auth.CurrentUsername(c)

	return c.JSON(http.StatusOK, echo.Map{
		"user":     user,
		"username": username,
	})
}
