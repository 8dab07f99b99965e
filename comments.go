package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"
)

/* ===================== Public JSON (API) ====================== */

type commentDTO struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCommentDTO(c Comment) commentDTO {
	return commentDTO{
		ID:        c.ID,
		Username:  c.User.Username,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type commentInput struct {
	Text string `json:"text"`
}

func (in *commentInput) validate() fieldErrors {
	fe := fieldErrors{}
	if strings.TrimSpace(in.Text) == "" {
		fe["text"] = "This field is required"
	}
	return fe
}

/* ===================== Service ====================== */

// As with workout entries, the caller resolves the parent workout first;
// only the workout owner ever reaches these.

func listWorkoutComments(db *gorm.DB, workoutID uint) ([]Comment, error) {
	var out []Comment
	err := db.Preload("User").
		Where("workout_id = ?", workoutID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func getWorkoutComment(db *gorm.DB, workoutID, id uint) (*Comment, error) {
	var c Comment
	err := db.Preload("User").
		Where("id = ? AND workout_id = ?", id, workoutID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func createWorkoutComment(db *gorm.DB, userID, workoutID uint, in commentInput) (*Comment, fieldErrors, error) {
	if fe := in.validate(); len(fe) > 0 {
		return nil, fe, nil
	}
	c := Comment{WorkoutID: workoutID, UserID: userID, Text: in.Text}
	if err := db.Create(&c).Error; err != nil {
		return nil, nil, err
	}
	if err := db.First(&c.User, "id = ?", userID).Error; err != nil {
		return nil, nil, err
	}
	return &c, nil, nil
}

func updateWorkoutComment(db *gorm.DB, workoutID, id uint, in commentInput) (*Comment, fieldErrors, error) {
	c, err := getWorkoutComment(db, workoutID, id)
	if err != nil {
		return nil, nil, err
	}
	if fe := in.validate(); len(fe) > 0 {
		return nil, fe, nil
	}
	c.Text = in.Text
	if err := db.Model(c).Update("text", in.Text).Error; err != nil {
		return nil, nil, err
	}
	return c, nil, nil
}

func deleteWorkoutComment(db *gorm.DB, workoutID, id uint) error {
	c, err := getWorkoutComment(db, workoutID, id)
	if err != nil {
		return err
	}
	return db.Delete(c).Error
}

/* ===================== HTTP ====================== */

// GET/POST /workouts/{workoutID}/comments/
func handleWorkoutComments(w http.ResponseWriter, r *http.Request) {
	wk, userID, ok := resolveWorkout(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := listWorkoutComments(DB, wk.ID)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		out := make([]commentDTO, 0, len(list))
		for _, c := range list {
			out = append(out, toCommentDTO(c))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in commentInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, fe, err := createWorkoutComment(DB, userID, wk.ID, in)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		if len(fe) > 0 {
			validationJSON(w, fe)
			return
		}
		writeJSON(w, http.StatusCreated, toCommentDTO(*c))

	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET/PUT/DELETE /workouts/{workoutID}/comments/{id}/
func handleWorkoutCommentDetail(w http.ResponseWriter, r *http.Request) {
	wk, _, ok := resolveWorkout(w, r)
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
		c, err := getWorkoutComment(DB, wk.ID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		} else if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, toCommentDTO(*c))

	case http.MethodPut:
		var in commentInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, fe, err := updateWorkoutComment(DB, wk.ID, id, in)
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
		writeJSON(w, http.StatusOK, toCommentDTO(*c))

	case http.MethodDelete:
		err := deleteWorkoutComment(DB, wk.ID, id)
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
