package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"
)

/* ===================== Public JSON (API) ====================== */

type workoutDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"` // YYYY-MM-DD
	Duration    int    `json:"duration"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// workoutDetailDTO is the composite read shape: the workout plus its
// exercise entries (by position) and comments (newest first).
type workoutDetailDTO struct {
	workoutDTO
	WorkoutExercises []workoutExerciseDTO `json:"workout_exercises"`
	Comments         []commentDTO         `json:"comments"`
}

func toWorkoutDTO(wk Workout) workoutDTO {
	return workoutDTO{
		ID:          wk.ID,
		Title:       wk.Title,
		Description: wk.Description,
		Date:        wk.Date.Format("2006-01-02"),
		Duration:    wk.Duration,
		CreatedAt:   wk.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   wk.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type workoutInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Duration    *int   `json:"duration"`
}

func (in *workoutInput) validate() (time.Time, fieldErrors) {
	in.Title = strings.TrimSpace(in.Title)
	fe := fieldErrors{}
	if in.Title == "" {
		fe["title"] = "This field is required"
	}
	var date time.Time
	if strings.TrimSpace(in.Date) == "" {
		fe["date"] = "This field is required"
	} else {
		var err error
		date, err = time.Parse("2006-01-02", in.Date)
		if err != nil {
			fe["date"] = "Date must be a valid YYYY-MM-DD date"
		}
	}
	if in.Duration == nil {
		fe["duration"] = "This field is required"
	} else if *in.Duration <= 0 {
		fe["duration"] = "Duration must be a positive number of minutes"
	}
	return date, fe
}

/* ===================== Service ====================== */

func listWorkouts(db *gorm.DB, userID uint) ([]Workout, error) {
	var out []Workout
	err := db.Where("user_id = ?", userID).Order("date DESC, id DESC").Find(&out).Error
	return out, err
}

// getWorkout is the ownership gate for everything nested under a workout:
// an id that exists but belongs to someone else comes back ErrRecordNotFound.
func getWorkout(db *gorm.DB, userID, id uint) (*Workout, error) {
	var wk Workout
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&wk).Error; err != nil {
		return nil, err
	}
	return &wk, nil
}

func createWorkout(db *gorm.DB, userID uint, in workoutInput) (*Workout, fieldErrors, error) {
	date, fe := in.validate()
	if len(fe) > 0 {
		return nil, fe, nil
	}
	wk := Workout{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Duration:    *in.Duration,
	}
	if err := db.Create(&wk).Error; err != nil {
		return nil, nil, err
	}
	return &wk, nil, nil
}

func updateWorkout(db *gorm.DB, userID, id uint, in workoutInput) (*Workout, fieldErrors, error) {
	wk, err := getWorkout(db, userID, id)
	if err != nil {
		return nil, nil, err
	}
	date, fe := in.validate()
	if len(fe) > 0 {
		return nil, fe, nil
	}
	wk.Title = in.Title
	wk.Description = in.Description
	wk.Date = date
	wk.Duration = *in.Duration
	if err := db.Save(wk).Error; err != nil {
		return nil, nil, err
	}
	return wk, nil, nil
}

func deleteWorkout(db *gorm.DB, userID, id uint) error {
	wk, err := getWorkout(db, userID, id)
	if err != nil {
		return err
	}
	return db.Delete(wk).Error
}

func getWorkoutDetail(db *gorm.DB, userID, id uint) (*workoutDetailDTO, error) {
	wk, err := getWorkout(db, userID, id)
	if err != nil {
		return nil, err
	}
	entries, err := listWorkoutEntries(db, wk.ID)
	if err != nil {
		return nil, err
	}
	comments, err := listWorkoutComments(db, wk.ID)
	if err != nil {
		return nil, err
	}
	detail := &workoutDetailDTO{
		workoutDTO:       toWorkoutDTO(*wk),
		WorkoutExercises: make([]workoutExerciseDTO, 0, len(entries)),
		Comments:         make([]commentDTO, 0, len(comments)),
	}
	for _, we := range entries {
		detail.WorkoutExercises = append(detail.WorkoutExercises, toWorkoutExerciseDTO(we))
	}
	for _, c := range comments {
		detail.Comments = append(detail.Comments, toCommentDTO(c))
	}
	return detail, nil
}

/* ===================== HTTP ====================== */

// GET/POST /workouts/
func handleWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := listWorkouts(DB, userID)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		out := make([]workoutDTO, 0, len(list))
		for _, wk := range list {
			out = append(out, toWorkoutDTO(wk))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in workoutInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		wk, fe, err := createWorkout(DB, userID, in)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		if len(fe) > 0 {
			validationJSON(w, fe)
			return
		}
		writeJSON(w, http.StatusCreated, toWorkoutDTO(*wk))

	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET/PUT/DELETE /workouts/{workoutID}/
func handleWorkoutDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "workoutID")
	if !ok {
		errorJSON(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		detail, err := getWorkoutDetail(DB, userID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		} else if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, detail)

	case http.MethodPut:
		var in workoutInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		wk, fe, err := updateWorkout(DB, userID, id, in)
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
		writeJSON(w, http.StatusOK, toWorkoutDTO(*wk))

	case http.MethodDelete:
		err := deleteWorkout(DB, userID, id)
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
