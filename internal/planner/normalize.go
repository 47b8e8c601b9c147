package planner

import (
	"fmt"
	"math"
	"time"
)

// NormalizeMealPlan maps a validated plan to one draft per day, in input order.
// Absent slots are skipped and contribute nothing to the totals.
func NormalizeMealPlan(plan ValidatedMealPlan, userID string) ([]MealPlanDraft, error) {
	drafts := make([]MealPlanDraft, 0, len(plan.Days))
	for _, day := range plan.Days {
		date, err := time.Parse(DateLayout, day.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid plan date %q: %w", day.Date, err)
		}

		draft := MealPlanDraft{
			UserID:    userID,
			Date:      date,
			IsDefault: userID == "",
		}

		slots := []struct {
			slot MealSlot
			meal *GeneratedMeal
		}{
			{SlotBreakfast, &day.Meals.Breakfast},
			{SlotLunch, &day.Meals.Lunch},
			{SlotDinner, &day.Meals.Dinner},
			{SlotSnack, day.Meals.Snack},
		}
		for _, s := range slots {
			if s.meal == nil {
				continue
			}
			m := normalizeMeal(s.slot, *s.meal)
			draft.TotalCalories += m.Calories
			draft.TotalProtein += m.Protein
			draft.TotalCarbs += m.Carbs
			draft.TotalFat += m.Fat
			draft.Meals = append(draft.Meals, m)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func normalizeMeal(slot MealSlot, m GeneratedMeal) MealDraft {
	duration := DefaultSlotMinutes[slot]
	if m.DurationMinutes != nil && *m.DurationMinutes > 0 {
		duration = int(math.Round(*m.DurationMinutes))
	}
	return MealDraft{
		Slot:            slot,
		Title:           m.Title,
		Ingredients:     append([]string(nil), m.Ingredients...),
		Instructions:    append([]string(nil), m.Instructions...),
		Calories:        m.Calories,
		Protein:         m.Macros.Proteins,
		Carbs:           m.Macros.Carbs,
		Fat:             m.Macros.Fats,
		DurationMinutes: duration,
	}
}

// NormalizeWorkoutPlan maps a validated plan to one draft per day holding a
// single workout made of that day's exercises.
func NormalizeWorkoutPlan(plan ValidatedWorkoutPlan, userID string) ([]WorkoutPlanDraft, error) {
	drafts := make([]WorkoutPlanDraft, 0, len(plan.Days))
	for _, day := range plan.Days {
		date, err := time.Parse(DateLayout, day.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid plan date %q: %w", day.Date, err)
		}

		w := WorkoutDraft{
			Name:        "Workout for " + day.Date,
			Description: defaultWorkoutDescription,
			Intensity:   defaultWorkoutIntensity,
		}
		for _, e := range day.Exercises {
			minutes := int(math.Round(e.DurationMinutes))
			w.DurationMinutes += minutes
			w.EstimatedCalories += e.EstimatedCalories
			w.Exercises = append(w.Exercises, ExerciseDraft{
				Name:              e.Name,
				Description:       e.Description,
				Reps:              e.Reps,
				DurationMinutes:   minutes,
				Focus:             e.Focus,
				EstimatedCalories: e.EstimatedCalories,
			})
		}

		drafts = append(drafts, WorkoutPlanDraft{
			UserID:        userID,
			Date:          date,
			IsDefault:     userID == "",
			TotalCalories: w.EstimatedCalories,
			TotalMinutes:  w.DurationMinutes,
			Workouts:      []WorkoutDraft{w},
		})
	}
	return drafts, nil
}
