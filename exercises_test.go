package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseCRUD(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")

	// create
	w := doRequest(t, r, http.MethodPost, "/exercises/", map[string]any{
		"name":        "Push-ups",
		"description": "Basic push-ups",
	}, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeMap(t, w)
	id := uint(created["id"].(float64))
	assert.Equal(t, "Push-ups", created["name"])
	assert.NotEmpty(t, created["created_at"])

	// get
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/exercises/%d/", id), nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Basic push-ups", decodeMap(t, w)["description"])

	// update
	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/exercises/%d/", id), map[string]any{
		"name":        "Wide push-ups",
		"description": "Hands wide",
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Wide push-ups", decodeMap(t, w)["name"])

	// delete
	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/exercises/%d/", id), nil, cookies)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/exercises/%d/", id), nil, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExerciseListOrderedByName(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")

	for _, name := range []string{"Squats", "Bench press", "Deadlift"} {
		mustCreateExercise(t, r, cookies, name)
	}

	w := doRequest(t, r, http.MethodGet, "/exercises/", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 3)
	assert.Equal(t, "Bench press", list[0]["name"])
	assert.Equal(t, "Deadlift", list[1]["name"])
	assert.Equal(t, "Squats", list[2]["name"])
}

func TestExerciseEmptyList(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")

	w := doRequest(t, r, http.MethodGet, "/exercises/", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]\n", w.Body.String())
}

func TestExerciseNameUniquePerUser(t *testing.T) {
	r := setupTest(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	mustCreateExercise(t, r, alice, "Push-ups")

	// same user, same name: rejected
	w := doRequest(t, r, http.MethodPost, "/exercises/", map[string]any{"name": "Push-ups"}, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w), "name")

	// different user, same name: fine
	w = doRequest(t, r, http.MethodPost, "/exercises/", map[string]any{"name": "Push-ups"}, bob)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestExerciseUpdateRevalidatesName(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")

	mustCreateExercise(t, r, cookies, "Push-ups")
	id := mustCreateExercise(t, r, cookies, "Squats")

	// rename onto an existing name: rejected
	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/exercises/%d/", id), map[string]any{
		"name": "Push-ups",
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// keeping its own name is not a conflict
	w = doRequest(t, r, http.MethodPut, fmt.Sprintf("/exercises/%d/", id), map[string]any{
		"name":        "Squats",
		"description": "Deeper",
	}, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExerciseValidation(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")

	w := doRequest(t, r, http.MethodPost, "/exercises/", map[string]any{"name": "   "}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMap(t, w), "name")
}

func TestExerciseIsolation(t *testing.T) {
	r := setupTest(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	id := mustCreateExercise(t, r, alice, "Push-ups")
	path := fmt.Sprintf("/exercises/%d/", id)

	// every access by another user reads as not-found
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, path, nil, bob).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodPut, path, map[string]any{
		"name": "Modified Push-ups", "description": "Modified",
	}, bob).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodDelete, path, nil, bob).Code)

	// bob's list stays empty
	w := doRequest(t, r, http.MethodGet, "/exercises/", nil, bob)
	assert.Len(t, decodeList(t, w), 0)

	// and the row is untouched
	var e Exercise
	require.NoError(t, DB.First(&e, id).Error)
	assert.Equal(t, "Push-ups", e.Name)
}
