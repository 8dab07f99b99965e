package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			log.Println("[env] loaded", p)
			return
		}
	}
}

// newRouter wires every route; tests mount it against an in-memory store.
func newRouter() *chi.Mux {
	r := chi.NewRouter()

	// Auth
	r.Post("/auth/register", handleAuthRegister)
	r.Post("/auth/login", handleAuthLogin)
	r.Post("/auth/logout", handleAuthLogout)
	r.Get("/auth/csrf", handleAuthCSRF)
	r.Get("/auth/me", handleAuthMe)

	// Exercises
	r.Get("/exercises/", handleExercises)
	r.Post("/exercises/", handleExercises)
	r.Get("/exercises/{id}/", handleExerciseDetail)
	r.Put("/exercises/{id}/", handleExerciseDetail)
	r.Delete("/exercises/{id}/", handleExerciseDetail)

	// Workouts
	r.Get("/workouts/", handleWorkouts)
	r.Post("/workouts/", handleWorkouts)
	// chi requires one wildcard name per segment, so the workout id is
	// {workoutID} here as well as on the nested routes
	r.Get("/workouts/{workoutID}/", handleWorkoutDetail)
	r.Put("/workouts/{workoutID}/", handleWorkoutDetail)
	r.Delete("/workouts/{workoutID}/", handleWorkoutDetail)

	// Nested under a workout
	r.Get("/workouts/{workoutID}/exercises/", handleWorkoutExercises)
	r.Post("/workouts/{workoutID}/exercises/", handleWorkoutExercises)
	r.Get("/workouts/{workoutID}/exercises/{id}/", handleWorkoutExerciseDetail)
	r.Put("/workouts/{workoutID}/exercises/{id}/", handleWorkoutExerciseDetail)
	r.Delete("/workouts/{workoutID}/exercises/{id}/", handleWorkoutExerciseDetail)

	r.Get("/workouts/{workoutID}/comments/", handleWorkoutComments)
	r.Post("/workouts/{workoutID}/comments/", handleWorkoutComments)
	r.Get("/workouts/{workoutID}/comments/{id}/", handleWorkoutCommentDetail)
	r.Put("/workouts/{workoutID}/comments/{id}/", handleWorkoutCommentDetail)
	r.Delete("/workouts/{workoutID}/comments/{id}/", handleWorkoutCommentDetail)

	// Health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	return r
}

func main() {
	loadDotenv()
	cfg := loadConfig()

	if cfg.DatabaseURL == "" {
		log.Fatal("[DB] DATABASE_URL is not set. Refusing to start.")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("[auth] JWT_SECRET is not set. Refusing to start.")
	}
	dsn := cfg.DatabaseURL
	// local only: allow sslmode=disable if using localhost
	if strings.Contains(dsn, "localhost") && !strings.Contains(dsn, "sslmode=") {
		if strings.Contains(dsn, "?") {
			dsn += "&sslmode=disable"
		} else {
			dsn += "?sslmode=disable"
		}
	}

	// Quieter GORM logger
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold: 1500 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	var err error
	DB, err = openGorm(dsn, gLogger)
	if err != nil {
		log.Fatalf("[DB] connect failed: %v", err)
	}
	log.Println("[DB] connected")

	if err := autoMigrate(DB); err != nil {
		log.Fatalf("[DB] migrate failed: %v", err)
	}

	// ---- Router & middleware
	r := newRouter()

	// allow comma-separated list of origins
	var origins []string
	for _, p := range strings.Split(cfg.CORSOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	handler := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"Set-Cookie"},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("API listening on", addr, "CORS_ORIGIN:", cfg.CORSOrigin)
	log.Fatal(srv.ListenAndServe())
}
