package main

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attachExercise(t *testing.T, h http.Handler, cookies []*http.Cookie, wkID uint, body map[string]any) map[string]any {
	t.Helper()
	w := doRequest(t, h, http.MethodPost, fmt.Sprintf("/workouts/%d/exercises/", wkID), body, cookies)
	require.Equal(t, http.StatusCreated, w.Code)
	return decodeMap(t, w)
}

func TestWorkoutExerciseCreateDefaults(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")
	exID := mustCreateExercise(t, r, cookies, "Push-ups")
	wkID := mustCreateWorkout(t, r, cookies, "Morning", "2026-08-30", 30)

	entry := attachExercise(t, r, cookies, wkID, map[string]any{
		"exercise_id": exID,
		"sets":        3,
		"reps":        10,
	})

	assert.Equal(t, float64(0), entry["order"])
	assert.Nil(t, entry["weight"])
	assert.Equal(t, "", entry["notes"])
	assert.Equal(t, "Push-ups", entry["exercise_name"])
	assert.Equal(t, float64(exID), entry["exercise_id"])
}

func TestWorkoutExerciseValidation(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")
	exID := mustCreateExercise(t, r, cookies, "Push-ups")
	wkID := mustCreateWorkout(t, r, cookies, "Morning", "2026-08-30", 30)
	path := fmt.Sprintf("/workouts/%d/exercises/", wkID)

	t.Run("missing required fields", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, path, map[string]any{}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeMap(t, w)
		assert.Contains(t, body, "exercise_id")
		assert.Contains(t, body, "sets")
		assert.Contains(t, body, "reps")
	})

	t.Run("unknown exercise", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, path, map[string]any{
			"exercise_id": 99999, "sets": 3, "reps": 10,
		}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Exercise not found", decodeMap(t, w)["exercise_id"])
	})

	t.Run("weight out of range", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, path, map[string]any{
			"exercise_id": exID, "sets": 3, "reps": 10, "weight": 1000.0,
		}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeMap(t, w), "weight")
	})

	t.Run("weight too precise", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, path, map[string]any{
			"exercise_id": exID, "sets": 3, "reps": 10, "weight": 20.555,
		}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeMap(t, w), "weight")
	})

	t.Run("two decimal places accepted", func(t *testing.T) {
		w := doRequest(t, r, http.MethodPost, path, map[string]any{
			"exercise_id": exID, "sets": 3, "reps": 10, "weight": 999.99,
		}, cookies)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

// Referencing an exercise that exists but belongs to someone else must be
// indistinguishable from referencing one that does not exist.
func TestWorkoutExerciseForeignExerciseRejected(t *testing.T) {
	r := setupTest(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	aliceEx := mustCreateExercise(t, r, alice, "Push-ups")
	bobWk := mustCreateWorkout(t, r, bob, "Bob workout", "2026-08-30", 20)

	w := doRequest(t, r, http.MethodPost, fmt.Sprintf("/workouts/%d/exercises/", bobWk), map[string]any{
		"exercise_id": aliceEx, "sets": 3, "reps": 10,
	}, bob)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Exercise not found", decodeMap(t, w)["exercise_id"])
}

func TestWorkoutExerciseOrderUnique(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")
	exID := mustCreateExercise(t, r, cookies, "Push-ups")
	wkID := mustCreateWorkout(t, r, cookies, "Morning", "2026-08-30", 30)
	path := fmt.Sprintf("/workouts/%d/exercises/", wkID)

	attachExercise(t, r, cookies, wkID, map[string]any{
		"exercise_id": exID, "sets": 3, "reps": 10, "order": 1,
	})

	// same (workout, exercise, order): rejected
	w := doRequest(t, r, http.MethodPost, path, map[string]any{
		"exercise_id": exID, "sets": 5, "reps": 5, "order": 1,
	}, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// same exercise at another position is allowed
	w = doRequest(t, r, http.MethodPost, path, map[string]any{
		"exercise_id": exID, "sets": 5, "reps": 5, "order": 2,
	}, cookies)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWorkoutExercisePutReplaces(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")
	exID := mustCreateExercise(t, r, cookies, "Push-ups")
	wkID := mustCreateWorkout(t, r, cookies, "Morning", "2026-08-30", 30)

	entry := attachExercise(t, r, cookies, wkID, map[string]any{
		"exercise_id": exID, "sets": 3, "reps": 10,
		"weight": 20.5, "notes": "slow tempo", "order": 2,
	})
	id := uint(entry["id"].(float64))

	// PUT without weight/notes/order resets them, it does not keep them
	w := doRequest(t, r, http.MethodPut, fmt.Sprintf("/workouts/%d/exercises/%d/", wkID, id), map[string]any{
		"exercise_id": exID, "sets": 4, "reps": 12,
	}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeMap(t, w)
	assert.Equal(t, float64(4), updated["sets"])
	assert.Equal(t, float64(12), updated["reps"])
	assert.Nil(t, updated["weight"])
	assert.Equal(t, "", updated["notes"])
	assert.Equal(t, float64(0), updated["order"])
}

func TestWorkoutExerciseDelete(t *testing.T) {
	r := setupTest(t)
	cookies := registerUser(t, r, "alice")
	exID := mustCreateExercise(t, r, cookies, "Push-ups")
	wkID := mustCreateWorkout(t, r, cookies, "Morning", "2026-08-30", 30)

	entry := attachExercise(t, r, cookies, wkID, map[string]any{
		"exercise_id": exID, "sets": 3, "reps": 10,
	})
	id := uint(entry["id"].(float64))
	path := fmt.Sprintf("/workouts/%d/exercises/%d/", wkID, id)

	assert.Equal(t, http.StatusNoContent, doRequest(t, r, http.MethodDelete, path, nil, cookies).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, path, nil, cookies).Code)

	// the exercise itself survives
	w := doRequest(t, r, http.MethodGet, fmt.Sprintf("/exercises/%d/", exID), nil, cookies)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkoutExerciseParentGate(t *testing.T) {
	r := setupTest(t)
	alice := registerUser(t, r, "alice")
	bob := registerUser(t, r, "bob")

	exID := mustCreateExercise(t, r, alice, "Push-ups")
	wkID := mustCreateWorkout(t, r, alice, "Morning", "2026-08-30", 30)
	entry := attachExercise(t, r, alice, wkID, map[string]any{
		"exercise_id": exID, "sets": 3, "reps": 10,
	})
	entryID := uint(entry["id"].(float64))

	collection := fmt.Sprintf("/workouts/%d/exercises/", wkID)
	detail := fmt.Sprintf("/workouts/%d/exercises/%d/", wkID, entryID)

	// list included: an unowned parent 404s, it does not return []
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, collection, nil, bob).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodPost, collection, map[string]any{
		"exercise_id": exID, "sets": 4, "reps": 12,
	}, bob).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, detail, nil, bob).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodPut, detail, map[string]any{
		"exercise_id": exID, "sets": 5, "reps": 15,
	}, bob).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodDelete, detail, nil, bob).Code)

	// row unchanged
	var we WorkoutExercise
	require.NoError(t, DB.First(&we, entryID).Error)
	assert.Equal(t, 3, we.Sets)
	assert.Equal(t, 10, we.Reps)

	// a workout id that exists for nobody behaves the same
	assert.Equal(t, http.StatusNotFound, doRequest(t, r, http.MethodGet, "/workouts/99999/exercises/", nil, bob).Code)
}
