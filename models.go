package main

import "time"

// User is the persisted auth user record. Handlers convert it to a
// lightweight DTO for the client; the password hash never leaves the server.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:150;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Exercise is a user-defined movement (e.g. "Push-ups"). Each user has their
// own namespace: (user_id, name) is unique.
type Exercise struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"uniqueIndex:idx_exercise_user_name;not null"`
	User        User   `gorm:"constraint:OnDelete:CASCADE"`
	Name        string `gorm:"uniqueIndex:idx_exercise_user_name;size:200;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Workout is a single training session owned by one user.
type Workout struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	User        User      `gorm:"constraint:OnDelete:CASCADE"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"type:text"`
	Date        time.Time `gorm:"type:date;not null"`
	Duration    int       `gorm:"not null"` // minutes
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WorkoutExercise links an Exercise into a Workout with per-instance
// set/rep/weight detail. "order" positions the entry within the workout;
// (workout_id, exercise_id, "order") is unique so the same exercise cannot
// occupy one position twice. The column name is an SQL keyword and must be
// quoted in raw query strings.
type WorkoutExercise struct {
	ID         uint     `gorm:"primaryKey"`
	WorkoutID  uint     `gorm:"uniqueIndex:idx_workout_exercise_order;not null"`
	Workout    Workout  `gorm:"constraint:OnDelete:CASCADE"`
	ExerciseID uint     `gorm:"uniqueIndex:idx_workout_exercise_order;not null"`
	Exercise   Exercise `gorm:"constraint:OnDelete:CASCADE"`
	Sets       int      `gorm:"not null"`
	Reps       int      `gorm:"not null"`
	Weight     *float64 `gorm:"type:numeric(5,2)"`
	Notes      string   `gorm:"type:text"`
	Order      int      `gorm:"column:order;not null;default:0;uniqueIndex:idx_workout_exercise_order"`
}

// Comment is a note left on a workout. UserID records the author for
// display; visibility and write rights follow the parent workout's owner.
type Comment struct {
	ID        uint    `gorm:"primaryKey"`
	WorkoutID uint    `gorm:"index;not null"`
	Workout   Workout `gorm:"constraint:OnDelete:CASCADE"`
	UserID    uint    `gorm:"not null"`
	User      User    `gorm:"constraint:OnDelete:CASCADE"`
	Text      string  `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
