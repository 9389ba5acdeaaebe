// Package session wraps the legacy server session kept for backward
// compatibility with pre-token logins. The identity resolver only consults
// it after both token tiers come up empty.
package session

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	Name        = "plantpedia_session"
	UserIDKey   = "UserId"
	UsernameKey = "Username"
)

func SetUser(c echo.Context, userID uint, username string) error {
	sess, err := session.Get(Name, c)
	if err != nil {
		return err
	}
	sess.Values[UserIDKey] = userID
	sess.Values[UsernameKey] = username
	return sess.Save(c.Request(), c.Response())
}

func UserID(c echo.Context) (uint, bool) {
	sess, err := session.Get(Name, c)
	if err != nil {
		return 0, false
	}
	switch v := sess.Values[UserIDKey].(type) {
	case uint:
		return v, true
	case int:
		if v > 0 {
			return uint(v), true
		}
	}
	return 0, false
}

func Username(c echo.Context) (string, bool) {
	sess, err := session.Get(Name, c)
	if err != nil {
		return "", false
	}
	if v, ok := sess.Values[UsernameKey].(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// Clear wipes all session values and expires the session cookie. Safe to
// call on a request with no session at all.
func Clear(c echo.Context) error {
	sess, err := session.Get(Name, c)
	if err != nil {
		return err
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}
