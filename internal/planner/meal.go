package planner

import "time"

// Macros are grams of each macronutrient.
type Macros struct {
	Carbs    float64 `json:"carbs"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
}

// GeneratedMeal is one meal as returned by the model.
type GeneratedMeal struct {
	Title           string   `json:"title"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	Calories        float64  `json:"calories"`
	Macros          Macros   `json:"macros"`
	DurationMinutes *float64 `json:"durationMinutes,omitempty"`
}

// DayMeals holds the slots of a day. Snack is optional.
type DayMeals struct {
	Breakfast GeneratedMeal  `json:"breakfast"`
	Lunch     GeneratedMeal  `json:"lunch"`
	Dinner    GeneratedMeal  `json:"dinner"`
	Snack     *GeneratedMeal `json:"snack,omitempty"`
}

type MealDay struct {
	Date  string   `json:"date"`
	Meals DayMeals `json:"meals"`
}

// ValidatedMealPlan is a model response that passed MealPlanSchema.
type ValidatedMealPlan struct {
	Days []MealDay `json:"days"`
}

var mealSchema = object(
	field("title", stringSchema),
	field("ingredients", arrayOf(stringSchema, 0)),
	field("instructions", arrayOf(stringSchema, 0)),
	field("calories", numberSchema),
	field("macros", object(
		field("carbs", numberSchema),
		field("proteins", numberSchema),
		field("fats", numberSchema),
	)),
	optionalField("durationMinutes", numberSchema),
)

// MealPlanSchema is the envelope schema for meal plan responses.
var MealPlanSchema = object(
	field("days", arrayOf(object(
		field("date", dateSchema),
		field("meals", object(
			field("breakfast", mealSchema),
			field("lunch", mealSchema),
			field("dinner", mealSchema),
			optionalField("snack", mealSchema),
		)),
	), 1)),
)

// ParseMealPlan strips fences, validates and decodes a raw meal plan response.
func ParseMealPlan(raw string) (ValidatedMealPlan, error) {
	var plan ValidatedMealPlan
	if err := parseAndValidate(raw, MealPlanSchema, &plan); err != nil {
		return ValidatedMealPlan{}, err
	}
	return plan, nil
}

// MealSlot names a meal of the day.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// DefaultSlotMinutes is the preparation time used when the model gives none.
var DefaultSlotMinutes = map[MealSlot]int{
	SlotBreakfast: 15,
	SlotLunch:     20,
	SlotDinner:    30,
	SlotSnack:     10,
}

// MealDraft is a persistence-ready meal.
type MealDraft struct {
	Slot            MealSlot `json:"slot"`
	Title           string   `json:"title"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	Calories        float64  `json:"calories"`
	Protein         float64  `json:"protein"`
	Carbs           float64  `json:"carbs"`
	Fat             float64  `json:"fat"`
	DurationMinutes int      `json:"durationMinutes"`
}

// MealPlanDraft is one day of meals with precomputed totals. An empty UserID
// marks a shared default plan.
type MealPlanDraft struct {
	UserID        string      `json:"userId,omitempty"`
	Date          time.Time   `json:"date"`
	IsDefault     bool        `json:"isDefault"`
	TotalCalories float64     `json:"totalCalories"`
	TotalProtein  float64     `json:"totalProtein"`
	TotalCarbs    float64     `json:"totalCarbs"`
	TotalFat      float64     `json:"totalFat"`
	Meals         []MealDraft `json:"meals"`
}

// MealPlan is a stored MealPlanDraft. Plans served from the static fallback
// have an empty ID.
type MealPlan struct {
	ID string `json:"id,omitempty"`
	MealPlanDraft
	CreatedAt time.Time `json:"createdAt"`
}
