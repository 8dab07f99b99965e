package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fieldErrors maps an input field to the reason it was rejected. A non-empty
// map is the body of every 400 response.
type fieldErrors map[string]string

func validationJSON(w http.ResponseWriter, fe fieldErrors) {
	writeJSON(w, http.StatusBadRequest, fe)
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// requireUser resolves the session or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := currentUserID(r)
	if !ok {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
	}
	return userID, ok
}

// pathID reads a numeric URL parameter. A malformed id is treated the same
// as an unknown one: the caller should 404.
func pathID(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
