package plandb

import (
	"database/sql"
	"time"
)

type MealPlan struct {
	ID            string
	UserID        sql.NullString
	Date          time.Time
	IsDefault     bool
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	CreatedAt     time.Time
}

type Meal struct {
	ID              string
	MealPlanID      string
	Slot            string
	Title           string
	Calories        float64
	Protein         float64
	Carbs           float64
	Fat             float64
	DurationMinutes int64
	Position        int64
}

// MealLine is one ingredient or instruction of a meal.
type MealLine struct {
	MealID   string
	Position int64
	Text     string
}

type WorkoutPlan struct {
	ID            string
	UserID        sql.NullString
	Date          time.Time
	IsDefault     bool
	TotalCalories float64
	TotalMinutes  int64
	CreatedAt     time.Time
}

type Workout struct {
	ID                string
	WorkoutPlanID     string
	Name              string
	Description       string
	DurationMinutes   int64
	Intensity         string
	EstimatedCalories float64
	Position          int64
}

type Exercise struct {
	ID                string
	WorkoutID         string
	Name              string
	Description       string
	Reps              string
	DurationMinutes   int64
	Focus             string
	EstimatedCalories float64
	Position          int64
}

// Window bounds a plan date lookup, both ends inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}
