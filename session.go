package main

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session state lives in a signed HS256 token inside an HttpOnly cookie.
// Logging out clears the cookie; there is no server-side session table.

const sessionTTLHours = 24 * 30

// cookie configuration (shared with auth.go)
var cookieName = getenv("COOKIE_NAME", "wt_session")
var cookieSecure = os.Getenv("COOKIE_SECURE") == "true"

// let env control SameSite: "none" | "lax" | "strict"  (default: lax)
var cookieSameSite = func() http.SameSite {
	switch strings.ToLower(os.Getenv("COOKIE_SAMESITE")) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}()

type sessionClaims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

func signSession(userID uint) (string, error) {
	secret := []byte(os.Getenv("JWT_SECRET"))
	claims := &sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTLHours * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(secret)
}

func parseSession(tokenStr string) (*sessionClaims, error) {
	secret := []byte(os.Getenv("JWT_SECRET"))
	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if c, ok := token.Claims.(*sessionClaims); ok && token.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: cookieSameSite,
		Secure:   cookieSecure,
		Expires:  time.Now().Add(sessionTTLHours * time.Hour),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: cookieSameSite,
		Secure:   cookieSecure,
		MaxAge:   -1,
	})
}

// currentUserID extracts the authenticated user id from the session cookie.
// The second return is false when there is no valid session.
func currentUserID(r *http.Request) (uint, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	claims, err := parseSession(c.Value)
	if err != nil || claims.UserID == 0 {
		return 0, false
	}
	return claims.UserID, true
}
