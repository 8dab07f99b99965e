package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --------- DTOs ---------

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// --------- Handlers ---------

// POST /auth/register
func handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var in credentialsReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Username = strings.TrimSpace(in.Username)

	fe := fieldErrors{}
	if in.Username == "" {
		fe["username"] = "This field is required"
	}
	if in.Password == "" {
		fe["password"] = "This field is required"
	} else if len(in.Password) < 8 {
		fe["password"] = "Password must be at least 8 characters"
	}
	if len(fe) > 0 {
		validationJSON(w, fe)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "server error")
		return
	}

	u := User{Username: in.Username, PasswordHash: string(hash)}
	err = DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&u).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		validationJSON(w, fieldErrors{"username": "A user with that username already exists"})
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}

	tok, err := signSession(u.ID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token error")
		return
	}
	setSessionCookie(w, tok)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "User created and logged in successfully",
		"username": u.Username,
	})
}

// POST /auth/login
func handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var in credentialsReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}

	var u User
	err := DB.Where("username = ?", strings.TrimSpace(in.Username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// same message as a bad password; do not leak which usernames exist
		errorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		errorJSON(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	tok, err := signSession(u.ID)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "token error")
		return
	}
	setSessionCookie(w, tok)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"username": u.Username,
	})
}

// POST /auth/logout
func handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUserID(r); !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out."})
}

// GET /auth/csrf
//
// Browser-client interop only: hands out a token the frontend can echo in a
// header. No handler verifies it; cookie SameSite does the real work.
func handleAuthCSRF(w http.ResponseWriter, r *http.Request) {
	tok := newToken()
	http.SetCookie(w, &http.Cookie{
		Name:     "csrftoken",
		Value:    tok,
		Path:     "/",
		SameSite: cookieSameSite,
		Secure:   cookieSecure,
	})
	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": tok})
}

// GET /auth/me
func handleAuthMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var u User
	if err := DB.First(&u, "id = ?", userID).Error; err != nil {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, userDTO{ID: u.ID, Username: u.Username})
}

// newToken returns a 32-hex-character random token.
func newToken() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
