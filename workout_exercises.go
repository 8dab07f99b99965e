package main

import (
	"errors"
	"math"
	"net/http"

	"gorm.io/gorm"
)

/* ===================== Public JSON (API) ====================== */

type workoutExerciseDTO struct {
	ID           uint     `json:"id"`
	ExerciseID   uint     `json:"exercise_id"`
	ExerciseName string   `json:"exercise_name"`
	Sets         int      `json:"sets"`
	Reps         int      `json:"reps"`
	Weight       *float64 `json:"weight"`
	Notes        string   `json:"notes"`
	Order        int      `json:"order"`
}

func toWorkoutExerciseDTO(we WorkoutExercise) workoutExerciseDTO {
	return workoutExerciseDTO{
		ID:           we.ID,
		ExerciseID:   we.ExerciseID,
		ExerciseName: we.Exercise.Name,
		Sets:         we.Sets,
		Reps:         we.Reps,
		Weight:       we.Weight,
		Notes:        we.Notes,
		Order:        we.Order,
	}
}

// PUT carries the same shape as POST and replaces the whole row: omitted
// weight/notes/order become null/empty/0, not "unchanged".
type workoutExerciseInput struct {
	ExerciseID *uint    `json:"exercise_id"`
	Sets       *int     `json:"sets"`
	Reps       *int     `json:"reps"`
	Weight     *float64 `json:"weight"`
	Notes      string   `json:"notes"`
	Order      *int     `json:"order"`
}

func (in *workoutExerciseInput) validate() fieldErrors {
	fe := fieldErrors{}
	if in.ExerciseID == nil {
		fe["exercise_id"] = "This field is required"
	}
	if in.Sets == nil {
		fe["sets"] = "This field is required"
	}
	if in.Reps == nil {
		fe["reps"] = "This field is required"
	}
	if in.Weight != nil {
		w := *in.Weight
		cents := w * 100
		if math.Abs(w) > 999.99 || math.Abs(cents-math.Round(cents)) > 1e-6 {
			fe["weight"] = "Weight must have at most 5 digits with 2 decimal places"
		}
	}
	return fe
}

func (in *workoutExerciseInput) order() int {
	if in.Order == nil {
		return 0
	}
	return *in.Order
}

/* ===================== Service ====================== */

// Callers must have resolved the parent workout through getWorkout first;
// these functions trust workoutID and scope children to it.

func listWorkoutEntries(db *gorm.DB, workoutID uint) ([]WorkoutExercise, error) {
	var out []WorkoutExercise
	err := db.Preload("Exercise").
		Where("workout_id = ?", workoutID).
		Order(`"order", id`).
		Find(&out).Error
	return out, err
}

func getWorkoutEntry(db *gorm.DB, workoutID, id uint) (*WorkoutExercise, error) {
	var we WorkoutExercise
	err := db.Preload("Exercise").
		Where("id = ? AND workout_id = ?", id, workoutID).
		First(&we).Error
	if err != nil {
		return nil, err
	}
	return &we, nil
}

func createWorkoutEntry(db *gorm.DB, userID, workoutID uint, in workoutExerciseInput) (*WorkoutExercise, fieldErrors, error) {
	if fe := in.validate(); len(fe) > 0 {
		return nil, fe, nil
	}
	// The referenced exercise must be the caller's, not merely exist.
	// Someone else's exercise id gets the same message as a bogus one.
	ex, err := getExercise(db, userID, *in.ExerciseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fieldErrors{"exercise_id": "Exercise not found"}, nil
	} else if err != nil {
		return nil, nil, err
	}

	we := WorkoutExercise{
		WorkoutID:  workoutID,
		ExerciseID: ex.ID,
		Sets:       *in.Sets,
		Reps:       *in.Reps,
		Weight:     in.Weight,
		Notes:      in.Notes,
		Order:      in.order(),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&WorkoutExercise{}).
			Where(`workout_id = ? AND exercise_id = ? AND "order" = ?`, workoutID, ex.ID, we.Order).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&we).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fieldErrors{"order": "This exercise already has an entry at this position"}, nil
	} else if err != nil {
		return nil, nil, err
	}
	we.Exercise = *ex
	return &we, nil, nil
}

func updateWorkoutEntry(db *gorm.DB, userID, workoutID, id uint, in workoutExerciseInput) (*WorkoutExercise, fieldErrors, error) {
	we, err := getWorkoutEntry(db, workoutID, id)
	if err != nil {
		return nil, nil, err
	}
	if fe := in.validate(); len(fe) > 0 {
		return nil, fe, nil
	}
	ex, err := getExercise(db, userID, *in.ExerciseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fieldErrors{"exercise_id": "Exercise not found"}, nil
	} else if err != nil {
		return nil, nil, err
	}

	we.ExerciseID = ex.ID
	we.Sets = *in.Sets
	we.Reps = *in.Reps
	we.Weight = in.Weight
	we.Notes = in.Notes
	we.Order = in.order()
	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&WorkoutExercise{}).
			Where(`workout_id = ? AND exercise_id = ? AND "order" = ? AND id <> ?`, workoutID, ex.ID, we.Order, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		// Updates with a column map keeps the loaded Exercise association
		// out of the write; Save would try to upsert it.
		return tx.Model(we).
			Updates(map[string]any{
				"exercise_id": we.ExerciseID,
				"sets":        we.Sets,
				"reps":        we.Reps,
				"weight":      we.Weight,
				"notes":       we.Notes,
				"order":       we.Order,
			}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fieldErrors{"order": "This exercise already has an entry at this position"}, nil
	} else if err != nil {
		return nil, nil, err
	}
	we.Exercise = *ex
	return we, nil, nil
}

func deleteWorkoutEntry(db *gorm.DB, workoutID, id uint) error {
	we, err := getWorkoutEntry(db, workoutID, id)
	if err != nil {
		return err
	}
	return db.Delete(we).Error
}

/* ===================== HTTP ====================== */

// resolveWorkout applies the parent ownership gate shared by the nested
// routes. A workout that is absent or not the caller's 404s every nested
// operation, list included.
func resolveWorkout(w http.ResponseWriter, r *http.Request) (*Workout, uint, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, 0, false
	}
	workoutID, ok := pathID(r, "workoutID")
	if !ok {
		errorJSON(w, http.StatusNotFound, "not found")
		return nil, 0, false
	}
	wk, err := getWorkout(DB, userID, workoutID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "not found")
		return nil, 0, false
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return nil, 0, false
	}
	return wk, userID, true
}

// GET/POST /workouts/{workoutID}/exercises/
func handleWorkoutExercises(w http.ResponseWriter, r *http.Request) {
	wk, userID, ok := resolveWorkout(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := listWorkoutEntries(DB, wk.ID)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		out := make([]workoutExerciseDTO, 0, len(list))
		for _, we := range list {
			out = append(out, toWorkoutExerciseDTO(we))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in workoutExerciseInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		we, fe, err := createWorkoutEntry(DB, userID, wk.ID, in)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		if len(fe) > 0 {
			validationJSON(w, fe)
			return
		}
		writeJSON(w, http.StatusCreated, toWorkoutExerciseDTO(*we))

	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET/PUT/DELETE /workouts/{workoutID}/exercises/{id}/
func handleWorkoutExerciseDetail(w http.ResponseWriter, r *http.Request) {
	wk, userID, ok := resolveWorkout(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		errorJSON(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		we, err := getWorkoutEntry(DB, wk.ID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		} else if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, toWorkoutExerciseDTO(*we))

	case http.MethodPut:
		var in workoutExerciseInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		we, fe, err := updateWorkoutEntry(DB, userID, wk.ID, id, in)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		} else if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		if len(fe) > 0 {
			validationJSON(w, fe)
			return
		}
		writeJSON(w, http.StatusOK, toWorkoutExerciseDTO(*we))

	case http.MethodDelete:
		err := deleteWorkoutEntry(DB, wk.ID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		} else if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
