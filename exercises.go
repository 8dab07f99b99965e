package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"
)

/* ===================== Public JSON (API) ====================== */

type exerciseDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toExerciseDTO(e Exercise) exerciseDTO {
	return exerciseDTO{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type exerciseInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in *exerciseInput) validate() fieldErrors {
	in.Name = strings.TrimSpace(in.Name)
	fe := fieldErrors{}
	if in.Name == "" {
		fe["name"] = "This field is required"
	}
	return fe
}

/* ===================== Service ====================== */

// Exercises are visible only to their owner: every query below carries the
// user_id predicate, so an unowned id behaves exactly like a missing one.

func listExercises(db *gorm.DB, userID uint) ([]Exercise, error) {
	var out []Exercise
	err := db.Where("user_id = ?", userID).Order("name, id").Find(&out).Error
	return out, err
}

func getExercise(db *gorm.DB, userID, id uint) (*Exercise, error) {
	var e Exercise
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func createExercise(db *gorm.DB, userID uint, in exerciseInput) (*Exercise, fieldErrors, error) {
	if fe := in.validate(); len(fe) > 0 {
		return nil, fe, nil
	}
	e := Exercise{UserID: userID, Name: in.Name, Description: in.Description}
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Exercise{}).
			Where("user_id = ? AND name = ?", userID, in.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(&e).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fieldErrors{"name": "You already have an exercise with this name"}, nil
	}
	return &e, nil, err
}

func updateExercise(db *gorm.DB, userID, id uint, in exerciseInput) (*Exercise, fieldErrors, error) {
	e, err := getExercise(db, userID, id)
	if err != nil {
		return nil, nil, err
	}
	if fe := in.validate(); len(fe) > 0 {
		return nil, fe, nil
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if in.Name != e.Name {
			var count int64
			if err := tx.Model(&Exercise{}).
				Where("user_id = ? AND name = ? AND id <> ?", userID, in.Name, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return gorm.ErrDuplicatedKey
			}
		}
		e.Name = in.Name
		e.Description = in.Description
		return tx.Save(e).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fieldErrors{"name": "You already have an exercise with this name"}, nil
	}
	return e, nil, err
}

func deleteExercise(db *gorm.DB, userID, id uint) error {
	e, err := getExercise(db, userID, id)
	if err != nil {
		return err
	}
	return db.Delete(e).Error
}

/* ===================== HTTP ====================== */

// GET/POST /exercises/
func handleExercises(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := listExercises(DB, userID)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		out := make([]exerciseDTO, 0, len(list))
		for _, e := range list {
			out = append(out, toExerciseDTO(e))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in exerciseInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		e, fe, err := createExercise(DB, userID, in)
		if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		if len(fe) > 0 {
			validationJSON(w, fe)
			return
		}
		writeJSON(w, http.StatusCreated, toExerciseDTO(*e))

	default:
		errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// GET/PUT/DELETE /exercises/{id}/
func handleExerciseDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
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
		e, err := getExercise(DB, userID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		} else if err != nil {
			errorJSON(w, http.StatusInternalServerError, "db error")
			return
		}
		writeJSON(w, http.StatusOK, toExerciseDTO(*e))

	case http.MethodPut:
		var in exerciseInput
		if err := decodeJSON(r, &in); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		e, fe, err := updateExercise(DB, userID, id, in)
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
		writeJSON(w, http.StatusOK, toExerciseDTO(*e))

	case http.MethodDelete:
		err := deleteExercise(DB, userID, id)
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
