package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"goalfit/internal/user"
)

// mockCompleter answers with one valid day per date listed in the prompt.
type mockCompleter struct {
	mu      sync.Mutex
	err     error
	raw     string
	calls   int
	prompts []string
}

func (m *mockCompleter) Complete(ctx context.Context, agentName, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if m.raw != "" {
		return m.raw, nil
	}

	var days []string
	for _, date := range promptDates(prompt) {
		if agentName == workoutAgent {
			days = append(days, fmt.Sprintf(`{"date": %q, "exercises": [{"name": "Burpees", "description": "cardio", "reps": "3x10", "durationMinutes": 12, "focus": "cardio", "estimatedCalories": 110}]}`, date))
			continue
		}
		meal := func(title string, cal int) string {
			return fmt.Sprintf(`{"title": %q, "ingredients": ["x"], "instructions": ["y"], "calories": %d, "macros": {"carbs": 10, "proteins": 10, "fats": 10}}`, title, cal)
		}
		days = append(days, fmt.Sprintf(`{"date": %q, "meals": {"breakfast": %s, "lunch": %s, "dinner": %s}}`,
			date, meal("Généré matin", 400), meal("Généré midi", 600), meal("Généré soir", 700)))
	}
	return "```json\n[" + strings.Join(days, ",") + "]\n```", nil
}

func promptDates(prompt string) []string {
	var dates []string
	for _, line := range strings.Split(prompt, "\n") {
		d, ok := strings.CutPrefix(line, "- ")
		if !ok {
			continue
		}
		if _, err := time.Parse(DateLayout, d); err == nil {
			dates = append(dates, d)
		}
	}
	return dates
}

type mockGate map[string]bool

func (g mockGate) HasActiveSubscription(ctx context.Context, userID string) bool {
	return g[userID]
}

type mockProfiles map[string]*user.Profile

func (p mockProfiles) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	if prof, ok := p[userID]; ok {
		return prof, nil
	}
	return nil, user.ErrNotFound
}

var fixedNow = time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)

type serviceFixture struct {
	meals    *MealService
	workouts *WorkoutService
	gen      *mockCompleter
	mealRepo *MealRepository
	userID   string
}

func newServiceFixture(t *testing.T, subscribed bool) *serviceFixture {
	t.Helper()
	db := setupTestDB(t)
	userID := createUser(t, db.SQL, "sub@example.com")
	gen := &mockCompleter{}
	deps := Deps{
		Generator: gen,
		Gate:      mockGate{userID: subscribed},
		Profiles: mockProfiles{userID: {
			UserID:             userID,
			Gender:             "femme",
			WeightKg:           58,
			Goal:               "perte de poids",
			DietaryPreferences: []string{"végétarien"},
		}},
		Now: func() time.Time { return fixedNow },
	}
	mealRepo := NewMealRepository(db.SQL)
	return &serviceFixture{
		meals:    NewMealService(deps, mealRepo),
		workouts: NewWorkoutService(deps, NewWorkoutRepository(db.SQL)),
		gen:      gen,
		mealRepo: mealRepo,
		userID:   userID,
	}
}

func TestMealServiceGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("TwoDates", func(t *testing.T) {
		f := newServiceFixture(t, false)
		plan, err := f.meals.Generate(ctx, GenerationRequest{
			Attributes: DefaultAttributes(),
			Dates:      []string{"2024-01-01", "2024-01-02"},
		})
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if len(plan.Days) != 2 {
			t.Fatalf("Expected 2 days, got %d", len(plan.Days))
		}
		drafts, _ := NormalizeMealPlan(plan, "")
		for _, d := range drafts {
			if len(d.Meals) != 3 {
				t.Errorf("Expected breakfast, lunch and dinner, got %d meals", len(d.Meals))
			}
			if d.TotalCalories != 1700 {
				t.Errorf("Expected 1700 calories, got %v", d.TotalCalories)
			}
		}
	})

	t.Run("NoDates", func(t *testing.T) {
		f := newServiceFixture(t, false)
		_, err := f.meals.Generate(ctx, GenerationRequest{Attributes: DefaultAttributes()})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest, got %v", err)
		}
		if f.gen.calls != 0 {
			t.Errorf("Expected no generation call, got %d", f.gen.calls)
		}
	})

	t.Run("BadDate", func(t *testing.T) {
		f := newServiceFixture(t, false)
		_, err := f.meals.Generate(ctx, GenerationRequest{Dates: []string{"demain"}})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("SchemaViolationIsUnavailable", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.gen.raw = `[{"date": "2024-01-01", "meals": {}}]`
		_, err := f.meals.Generate(ctx, GenerationRequest{Dates: []string{"2024-01-01"}})
		if !errors.Is(err, ErrGenerationUnavailable) {
			t.Errorf("Expected ErrGenerationUnavailable, got %v", err)
		}
	})
}

func TestMealServiceGenerateForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("Subscribed", func(t *testing.T) {
		f := newServiceFixture(t, true)
		plans, err := f.meals.GenerateForUser(ctx, f.userID)
		if err != nil {
			t.Fatalf("GenerateForUser failed: %v", err)
		}
		if len(plans) != RollingWindowDays {
			t.Fatalf("Expected %d plans, got %d", RollingWindowDays, len(plans))
		}
		if plans[0].UserID != f.userID || plans[0].IsDefault || plans[0].ID == "" {
			t.Errorf("Expected a stored custom plan, got %+v", plans[0].MealPlanDraft)
		}
		if !strings.Contains(f.gen.prompts[0], "- Préférences alimentaires : végétarien") {
			t.Error("Expected the profile to shape the prompt")
		}
		if !strings.Contains(f.gen.prompts[0], "- 2024-01-07\n") {
			t.Error("Expected the rolling window in the prompt")
		}

		again, err := f.meals.GetPlans(ctx, f.userID)
		if err != nil {
			t.Fatalf("GetPlans failed: %v", err)
		}
		if len(again) != RollingWindowDays || again[0].UserID != f.userID {
			t.Errorf("Expected the stored custom plans, got %d plans", len(again))
		}
	})

	t.Run("NotSubscribed", func(t *testing.T) {
		f := newServiceFixture(t, false)
		_, err := f.meals.GenerateForUser(ctx, f.userID)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
		if f.gen.calls != 0 {
			t.Errorf("Expected no generation call, got %d", f.gen.calls)
		}
	})

	t.Run("NoProfile", func(t *testing.T) {
		f := newServiceFixture(t, true)
		f.meals.Profiles = mockProfiles{}
		_, err := f.meals.RefreshUser(ctx, f.userID)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("GenerationFailureStoresNothing", func(t *testing.T) {
		f := newServiceFixture(t, true)
		f.gen.err = errors.New("upstream down")
		_, err := f.meals.GenerateForUser(ctx, f.userID)
		if !errors.Is(err, ErrGenerationUnavailable) {
			t.Errorf("Expected ErrGenerationUnavailable, got %v", err)
		}
		plans, _ := f.mealRepo.ListForUser(ctx, f.userID, fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 7))
		if len(plans) != 0 {
			t.Errorf("Expected nothing stored, got %d plans", len(plans))
		}
	})
}

func TestMealServiceDefaults(t *testing.T) {
	ctx := context.Background()

	t.Run("GetPlansForUnsubscribedUser", func(t *testing.T) {
		f := newServiceFixture(t, false)
		plans, err := f.meals.GetPlans(ctx, f.userID)
		if err != nil {
			t.Fatalf("GetPlans failed: %v", err)
		}
		if len(plans) != RollingWindowDays || !plans[0].IsDefault || plans[0].UserID != "" {
			t.Fatalf("Expected %d default plans, got %+v", RollingWindowDays, plans)
		}
		if strings.Contains(f.gen.prompts[0], "végétarien") {
			t.Error("Expected defaults to use the anonymous attributes")
		}

		if _, err := f.meals.GetPlans(ctx, f.userID); err != nil {
			t.Fatalf("second GetPlans failed: %v", err)
		}
		if f.gen.calls != 1 {
			t.Errorf("Expected stored defaults to be reused, got %d generation calls", f.gen.calls)
		}
	})

	t.Run("SubscribedWithoutPlansGetsDefaults", func(t *testing.T) {
		f := newServiceFixture(t, true)
		plans, err := f.meals.GetPlans(ctx, f.userID)
		if err != nil {
			t.Fatalf("GetPlans failed: %v", err)
		}
		if len(plans) == 0 || !plans[0].IsDefault {
			t.Errorf("Expected default plans, got %+v", plans)
		}
	})

	t.Run("StaticFallbackIsNotStored", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.gen.err = errors.New("upstream down")

		plans, err := f.meals.DefaultPlans(ctx, 3)
		if err != nil {
			t.Fatalf("DefaultPlans failed: %v", err)
		}
		if len(plans) != 3 {
			t.Fatalf("Expected 3 plans, got %d", len(plans))
		}
		p := plans[0]
		if p.ID != "" || !p.IsDefault {
			t.Errorf("Expected an unsaved default plan, got %+v", p)
		}
		if len(p.Meals) != 3 || p.TotalCalories != 1200 {
			t.Errorf("Expected the 3-meal 1200 kcal fallback, got %d meals and %v kcal", len(p.Meals), p.TotalCalories)
		}
		if !p.Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("Expected first fallback day to be today, got %v", p.Date)
		}

		n, _ := f.mealRepo.CountDefaults(ctx, fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 7))
		if n != 0 {
			t.Errorf("Expected fallback plans not to be stored, got %d", n)
		}
	})

	t.Run("EnsureDefaultsOnlyOnce", func(t *testing.T) {
		f := newServiceFixture(t, false)

		stored, err := f.meals.EnsureDefaults(ctx)
		if err != nil || !stored {
			t.Fatalf("Expected defaults to be stored, got %v, %v", stored, err)
		}
		stored, err = f.meals.EnsureDefaults(ctx)
		if err != nil || stored {
			t.Errorf("Expected nothing to be regenerated, got %v, %v", stored, err)
		}
		if f.gen.calls != 1 {
			t.Errorf("Expected 1 generation call, got %d", f.gen.calls)
		}
	})

	t.Run("RegenerateDefaultsReplaces", func(t *testing.T) {
		f := newServiceFixture(t, false)
		if _, err := f.meals.RegenerateDefaults(ctx, 2); err != nil {
			t.Fatalf("RegenerateDefaults failed: %v", err)
		}
		if _, err := f.meals.RegenerateDefaults(ctx, 2); err != nil {
			t.Fatalf("RegenerateDefaults failed: %v", err)
		}
		n, _ := f.mealRepo.CountDefaults(ctx, fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 7))
		if n != 2 {
			t.Errorf("Expected 2 default plans, got %d", n)
		}
	})
}

func TestWorkoutService(t *testing.T) {
	ctx := context.Background()

	t.Run("GenerateForUser", func(t *testing.T) {
		f := newServiceFixture(t, true)
		plans, err := f.workouts.GenerateForUser(ctx, f.userID)
		if err != nil {
			t.Fatalf("GenerateForUser failed: %v", err)
		}
		if len(plans) != RollingWindowDays {
			t.Fatalf("Expected %d plans, got %d", RollingWindowDays, len(plans))
		}
		if plans[0].TotalMinutes != 12 || plans[0].TotalCalories != 110 {
			t.Errorf("Unexpected totals: %+v", plans[0].WorkoutPlanDraft)
		}
		if !strings.Contains(f.gen.prompts[0], "coach sportif") {
			t.Error("Expected the workout prompt")
		}
	})

	t.Run("Forbidden", func(t *testing.T) {
		f := newServiceFixture(t, false)
		if _, err := f.workouts.GenerateForUser(ctx, f.userID); !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("FallbackDefaults", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.gen.err = errors.New("upstream down")
		plans, err := f.workouts.GetPlans(ctx, f.userID)
		if err != nil {
			t.Fatalf("GetPlans failed: %v", err)
		}
		if len(plans) != RollingWindowDays || plans[0].ID != "" {
			t.Fatalf("Expected unsaved fallback plans, got %+v", plans)
		}
		if len(plans[0].Workouts) != 1 || len(plans[0].Workouts[0].Exercises) != 4 {
			t.Errorf("Expected one workout of 4 exercises, got %+v", plans[0].Workouts)
		}
	})

	t.Run("Domain", func(t *testing.T) {
		f := newServiceFixture(t, false)
		if f.workouts.Domain() != "workout" || f.meals.Domain() != "meal" {
			t.Errorf("Unexpected domains: %s, %s", f.meals.Domain(), f.workouts.Domain())
		}
	})
}

func TestFallback(t *testing.T) {
	f, err := LoadFallback(DefaultLocale)
	if err != nil {
		t.Fatalf("LoadFallback failed: %v", err)
	}

	meals := f.MealPlan([]string{"2024-05-01"})
	if len(meals.Days) != 1 || meals.Days[0].Meals.Breakfast.Calories != 350 {
		t.Errorf("Unexpected fallback meals: %+v", meals)
	}
	if meals.Days[0].Meals.Dinner.Calories != 450 || meals.Days[0].Meals.Lunch.Calories != 400 {
		t.Errorf("Unexpected fallback calories: %+v", meals.Days[0].Meals)
	}

	workouts := f.WorkoutPlan([]string{"2024-05-01"})
	if len(workouts.Days[0].Exercises) != 4 {
		t.Errorf("Expected 4 fallback exercises, got %d", len(workouts.Days[0].Exercises))
	}

	if _, err := LoadFallback("xx"); err == nil {
		t.Error("Expected error for unknown locale")
	}
}

func mealDayJSON(date string) string {
	meal := `{"title": "Plat", "ingredients": ["x"], "instructions": ["y"], "calories": 300, "macros": {"carbs": 10, "proteins": 10, "fats": 10}}`
	return fmt.Sprintf(`{"date": %q, "meals": {"breakfast": %s, "lunch": %s, "dinner": %s}}`, date, meal, meal, meal)
}

func TestResponseDates(t *testing.T) {
	ctx := context.Background()
	window := RollingDates(fixedNow, RollingWindowDays)

	t.Run("RepeatedDateIsRejected", func(t *testing.T) {
		f := newServiceFixture(t, true)
		days := []string{mealDayJSON(window[0]), mealDayJSON(window[0])}
		for _, d := range window[2:] {
			days = append(days, mealDayJSON(d))
		}
		f.gen.raw = "[" + strings.Join(days, ",") + "]"

		_, err := f.meals.GenerateForUser(ctx, f.userID)
		if !errors.Is(err, ErrGenerationUnavailable) {
			t.Fatalf("Expected ErrGenerationUnavailable, got %v", err)
		}
		stored, _ := f.mealRepo.ListForUser(ctx, f.userID, fixedNow.AddDate(0, 0, -1), fixedNow.AddDate(0, 0, 8))
		if len(stored) != 0 {
			t.Errorf("Expected nothing stored, got %d plans", len(stored))
		}
	})

	t.Run("UnrequestedDateIsRejected", func(t *testing.T) {
		f := newServiceFixture(t, true)
		days := []string{mealDayJSON("1999-05-05")}
		for _, d := range window[1:] {
			days = append(days, mealDayJSON(d))
		}
		f.gen.raw = "[" + strings.Join(days, ",") + "]"

		_, err := f.meals.GenerateForUser(ctx, f.userID)
		if !errors.Is(err, ErrGenerationUnavailable) {
			t.Fatalf("Expected ErrGenerationUnavailable, got %v", err)
		}
		old := time.Date(1999, 5, 5, 0, 0, 0, 0, time.UTC)
		stored, _ := f.mealRepo.ListForUser(ctx, f.userID, old, old.AddDate(0, 0, 1))
		if len(stored) != 0 {
			t.Errorf("Expected no plan stored for 1999-05-05, got %d", len(stored))
		}
	})

	t.Run("StatelessGenerateChecksRequestedDates", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.gen.raw = "[" + mealDayJSON("2024-01-01") + "]"
		_, err := f.meals.Generate(ctx, GenerationRequest{Dates: []string{"2024-01-01", "2024-01-02"}})
		if !errors.Is(err, ErrGenerationUnavailable) {
			t.Errorf("Expected ErrGenerationUnavailable for a missing day, got %v", err)
		}
	})

	t.Run("WorkoutDefaultsFallBackOnWrongDates", func(t *testing.T) {
		f := newServiceFixture(t, false)
		f.gen.raw = `[{"date": "1999-05-05", "exercises": [{"name": "Burpees", "description": "cardio", "reps": "3x10", "durationMinutes": 12, "focus": "cardio", "estimatedCalories": 110}]}]`
		plans, err := f.workouts.RegenerateDefaults(ctx, 1)
		if err != nil {
			t.Fatalf("RegenerateDefaults failed: %v", err)
		}
		if len(plans) != 1 || plans[0].ID != "" {
			t.Errorf("Expected one unsaved fallback plan, got %+v", plans)
		}
	})
}
