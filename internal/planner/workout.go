package planner

import "time"

// GeneratedExercise is one exercise as returned by the model.
type GeneratedExercise struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Reps              string  `json:"reps"`
	DurationMinutes   float64 `json:"durationMinutes"`
	Focus             string  `json:"focus"`
	EstimatedCalories float64 `json:"estimatedCalories"`
}

type WorkoutDay struct {
	Date      string              `json:"date"`
	Exercises []GeneratedExercise `json:"exercises"`
}

// ValidatedWorkoutPlan is a model response that passed WorkoutPlanSchema.
type ValidatedWorkoutPlan struct {
	Days []WorkoutDay `json:"days"`
}

// WorkoutPlanSchema is the envelope schema for workout plan responses.
var WorkoutPlanSchema = object(
	field("days", arrayOf(object(
		field("date", dateSchema),
		field("exercises", arrayOf(object(
			field("name", stringSchema),
			field("description", stringSchema),
			field("reps", stringSchema),
			field("durationMinutes", numberSchema),
			field("focus", stringSchema),
			field("estimatedCalories", numberSchema),
		), 1)),
	), 1)),
)

// ParseWorkoutPlan strips fences, validates and decodes a raw workout plan response.
func ParseWorkoutPlan(raw string) (ValidatedWorkoutPlan, error) {
	var plan ValidatedWorkoutPlan
	if err := parseAndValidate(raw, WorkoutPlanSchema, &plan); err != nil {
		return ValidatedWorkoutPlan{}, err
	}
	return plan, nil
}

const (
	defaultWorkoutDescription = "AI Generated Workout"
	defaultWorkoutIntensity   = "Moderate"
)

type ExerciseDraft struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	Reps              string  `json:"reps"`
	DurationMinutes   int     `json:"durationMinutes"`
	Focus             string  `json:"focus"`
	EstimatedCalories float64 `json:"estimatedCalories"`
}

type WorkoutDraft struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	DurationMinutes   int             `json:"durationMinutes"`
	Intensity         string          `json:"intensity"`
	EstimatedCalories float64         `json:"estimatedCalories"`
	Exercises         []ExerciseDraft `json:"exercises"`
}

// WorkoutPlanDraft is one day of training. An empty UserID marks a shared
// default plan.
type WorkoutPlanDraft struct {
	UserID        string         `json:"userId,omitempty"`
	Date          time.Time      `json:"date"`
	IsDefault     bool           `json:"isDefault"`
	TotalCalories float64        `json:"totalCalories"`
	TotalMinutes  int            `json:"totalMinutes"`
	Workouts      []WorkoutDraft `json:"workouts"`
}

// WorkoutPlan is a stored WorkoutPlanDraft.
type WorkoutPlan struct {
	ID string `json:"id,omitempty"`
	WorkoutPlanDraft
	CreatedAt time.Time `json:"createdAt"`
}
