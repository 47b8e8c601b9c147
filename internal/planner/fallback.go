package planner

import (
	"embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed fallback/*.yaml
var fallbackFS embed.FS

// DefaultLocale is the locale of the built-in fallback content.
const DefaultLocale = "fr"

type fallbackMacros struct {
	Proteins float64 `yaml:"proteins"`
	Carbs    float64 `yaml:"carbs"`
	Fats     float64 `yaml:"fats"`
}

type fallbackMeal struct {
	Title           string         `yaml:"title"`
	Ingredients     []string       `yaml:"ingredients"`
	Instructions    []string       `yaml:"instructions"`
	Calories        float64        `yaml:"calories"`
	Macros          fallbackMacros `yaml:"macros"`
	DurationMinutes float64        `yaml:"durationMinutes"`
}

type fallbackExercise struct {
	Name              string  `yaml:"name"`
	Description       string  `yaml:"description"`
	Reps              string  `yaml:"reps"`
	DurationMinutes   float64 `yaml:"durationMinutes"`
	Focus             string  `yaml:"focus"`
	EstimatedCalories float64 `yaml:"estimatedCalories"`
}

// Fallback is the static content served when default generation fails.
type Fallback struct {
	Meals struct {
		Breakfast fallbackMeal  `yaml:"breakfast"`
		Lunch     fallbackMeal  `yaml:"lunch"`
		Dinner    fallbackMeal  `yaml:"dinner"`
		Snack     *fallbackMeal `yaml:"snack"`
	} `yaml:"meals"`
	Exercises []fallbackExercise `yaml:"exercises"`
}

// LoadFallback reads the embedded fallback table for a locale.
func LoadFallback(locale string) (*Fallback, error) {
	data, err := fallbackFS.ReadFile("fallback/" + locale + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("no fallback content for locale %q: %w", locale, err)
	}
	var f Fallback
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fallback content for locale %q: %w", locale, err)
	}
	return &f, nil
}

// MealPlan returns the same validated day for every date.
func (f *Fallback) MealPlan(dates []string) ValidatedMealPlan {
	plan := ValidatedMealPlan{Days: make([]MealDay, 0, len(dates))}
	for _, d := range dates {
		day := MealDay{Date: d, Meals: DayMeals{
			Breakfast: f.Meals.Breakfast.generated(),
			Lunch:     f.Meals.Lunch.generated(),
			Dinner:    f.Meals.Dinner.generated(),
		}}
		if f.Meals.Snack != nil {
			snack := f.Meals.Snack.generated()
			day.Meals.Snack = &snack
		}
		plan.Days = append(plan.Days, day)
	}
	return plan
}

// WorkoutPlan returns the same validated session for every date.
func (f *Fallback) WorkoutPlan(dates []string) ValidatedWorkoutPlan {
	plan := ValidatedWorkoutPlan{Days: make([]WorkoutDay, 0, len(dates))}
	for _, d := range dates {
		day := WorkoutDay{Date: d}
		for _, e := range f.Exercises {
			day.Exercises = append(day.Exercises, GeneratedExercise(e))
		}
		plan.Days = append(plan.Days, day)
	}
	return plan
}

// defaultMealPlans builds unsaved shared plans from the fallback table.
func (f *Fallback) defaultMealPlans(dates []string, now time.Time) ([]MealPlan, error) {
	drafts, err := NormalizeMealPlan(f.MealPlan(dates), "")
	if err != nil {
		return nil, err
	}
	plans := make([]MealPlan, 0, len(drafts))
	for _, d := range drafts {
		plans = append(plans, MealPlan{MealPlanDraft: d, CreatedAt: now})
	}
	return plans, nil
}

// defaultWorkoutPlans builds unsaved shared plans from the fallback table.
func (f *Fallback) defaultWorkoutPlans(dates []string, now time.Time) ([]WorkoutPlan, error) {
	drafts, err := NormalizeWorkoutPlan(f.WorkoutPlan(dates), "")
	if err != nil {
		return nil, err
	}
	plans := make([]WorkoutPlan, 0, len(drafts))
	for _, d := range drafts {
		plans = append(plans, WorkoutPlan{WorkoutPlanDraft: d, CreatedAt: now})
	}
	return plans, nil
}

func (m fallbackMeal) generated() GeneratedMeal {
	minutes := m.DurationMinutes
	return GeneratedMeal{
		Title:        m.Title,
		Ingredients:  append([]string(nil), m.Ingredients...),
		Instructions: append([]string(nil), m.Instructions...),
		Calories:     m.Calories,
		Macros: Macros{
			Carbs:    m.Macros.Carbs,
			Proteins: m.Macros.Proteins,
			Fats:     m.Macros.Fats,
		},
		DurationMinutes: &minutes,
	}
}
