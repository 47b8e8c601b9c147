package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"goalfit/internal/database"
	"goalfit/internal/user"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, email string) string {
	t.Helper()
	u, err := user.NewRepository(db).Create(context.Background(), user.User{Email: email, IsActive: true})
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return u.ID
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func mealDraft(userID string, date time.Time, title string, ingredients ...string) MealPlanDraft {
	meal := func(slot MealSlot, cal float64) MealDraft {
		return MealDraft{
			Slot:            slot,
			Title:           title,
			Ingredients:     ingredients,
			Instructions:    []string{"préparer", "servir"},
			Calories:        cal,
			Protein:         10,
			Carbs:           20,
			Fat:             5,
			DurationMinutes: DefaultSlotMinutes[slot],
		}
	}
	return MealPlanDraft{
		UserID:        userID,
		Date:          date,
		IsDefault:     userID == "",
		TotalCalories: 900,
		TotalProtein:  30,
		TotalCarbs:    60,
		TotalFat:      15,
		Meals: []MealDraft{
			meal(SlotBreakfast, 300),
			meal(SlotLunch, 300),
			meal(SlotDinner, 300),
		},
	}
}

func TestMealRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("ReplacesExistingPlan", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMealRepository(db.SQL)
		userID := createUser(t, db.SQL, "a@example.com")

		first, err := repo.Upsert(ctx, mealDraft(userID, day.Add(9*time.Hour), "Avant", "riz", "poulet"))
		if err != nil {
			t.Fatalf("first Upsert failed: %v", err)
		}
		second, err := repo.Upsert(ctx, mealDraft(userID, day.Add(18*time.Hour), "Après", "pâtes"))
		if err != nil {
			t.Fatalf("second Upsert failed: %v", err)
		}
		if first.ID == second.ID {
			t.Error("Expected a new plan id on replace")
		}
		if !second.Date.Equal(day) {
			t.Errorf("Expected plan date normalized to start of day, got %v", second.Date)
		}

		if n := countRows(t, db.SQL, "meal_plans"); n != 1 {
			t.Errorf("Expected 1 meal plan, got %d", n)
		}
		if n := countRows(t, db.SQL, "meals"); n != 3 {
			t.Errorf("Expected 3 meals, got %d", n)
		}
		if n := countRows(t, db.SQL, "meal_ingredients"); n != 3 {
			t.Errorf("Expected 3 ingredients from the latest plan only, got %d", n)
		}
		if n := countRows(t, db.SQL, "meal_instructions"); n != 6 {
			t.Errorf("Expected 6 instructions, got %d", n)
		}

		plans, err := repo.ListForUser(ctx, userID, day, day.Add(24*time.Hour-time.Nanosecond))
		if err != nil {
			t.Fatalf("ListForUser failed: %v", err)
		}
		if len(plans) != 1 {
			t.Fatalf("Expected 1 plan, got %d", len(plans))
		}
		got := plans[0]
		if got.ID != second.ID || len(got.Meals) != 3 || got.Meals[0].Title != "Après" {
			t.Errorf("Expected the latest plan, got %+v", got)
		}
		if len(got.Meals[0].Ingredients) != 1 || got.Meals[0].Ingredients[0] != "pâtes" {
			t.Errorf("Expected latest ingredients, got %v", got.Meals[0].Ingredients)
		}
		if got.Meals[2].Slot != SlotDinner || got.Meals[2].DurationMinutes != 30 {
			t.Errorf("Expected dinner last with 30 minutes, got %+v", got.Meals[2])
		}
		if got.TotalCalories != 900 || got.IsDefault {
			t.Errorf("Unexpected plan header: %+v", got.MealPlanDraft)
		}
	})

	t.Run("NoOrphansAfterManyReplaces", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMealRepository(db.SQL)

		for i := 0; i < 5; i++ {
			if _, err := repo.Upsert(ctx, mealDraft("", day, fmt.Sprintf("v%d", i), "a", "b")); err != nil {
				t.Fatalf("Upsert %d failed: %v", i, err)
			}
		}

		var orphans int
		err := db.SQL.QueryRow(`
			SELECT
				(SELECT COUNT(*) FROM meals WHERE meal_plan_id NOT IN (SELECT id FROM meal_plans)) +
				(SELECT COUNT(*) FROM meal_ingredients WHERE meal_id NOT IN (SELECT id FROM meals)) +
				(SELECT COUNT(*) FROM meal_instructions WHERE meal_id NOT IN (SELECT id FROM meals))
		`).Scan(&orphans)
		if err != nil {
			t.Fatalf("orphan query failed: %v", err)
		}
		if orphans != 0 {
			t.Errorf("Expected no orphan rows, got %d", orphans)
		}
		if n := countRows(t, db.SQL, "meal_ingredients"); n != 6 {
			t.Errorf("Expected 6 ingredients, got %d", n)
		}
	})

	t.Run("DefaultAndUserPlansAreSeparate", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMealRepository(db.SQL)
		userID := createUser(t, db.SQL, "b@example.com")

		if _, err := repo.Upsert(ctx, mealDraft("", day, "Défaut")); err != nil {
			t.Fatalf("default Upsert failed: %v", err)
		}
		if _, err := repo.Upsert(ctx, mealDraft(userID, day, "Perso")); err != nil {
			t.Fatalf("user Upsert failed: %v", err)
		}
		if n := countRows(t, db.SQL, "meal_plans"); n != 2 {
			t.Errorf("Expected 2 plans, got %d", n)
		}

		from, to := day, day.AddDate(0, 0, 7)
		defaults, err := repo.ListDefaults(ctx, from, to)
		if err != nil {
			t.Fatalf("ListDefaults failed: %v", err)
		}
		if len(defaults) != 1 || !defaults[0].IsDefault || defaults[0].Meals[0].Title != "Défaut" {
			t.Errorf("Unexpected defaults: %+v", defaults)
		}
		n, err := repo.CountDefaults(ctx, from, to)
		if err != nil || n != 1 {
			t.Errorf("Expected 1 default, got %d (%v)", n, err)
		}
		n, _ = repo.CountDefaults(ctx, day.AddDate(0, 0, 1), to)
		if n != 0 {
			t.Errorf("Expected no default outside the window, got %d", n)
		}
	})

	t.Run("FailedUpsertLeavesNothing", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMealRepository(db.SQL)

		_, err := repo.Upsert(ctx, mealDraft("no-such-user", day, "x", "y"))
		if !errors.Is(err, ErrPersistence) {
			t.Fatalf("Expected ErrPersistence, got %v", err)
		}
		for _, table := range []string{"meal_plans", "meals", "meal_ingredients", "meal_instructions"} {
			if n := countRows(t, db.SQL, table); n != 0 {
				t.Errorf("Expected %s to be empty after rollback, got %d", table, n)
			}
		}
	})

	t.Run("ConcurrentUpsertsConverge", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMealRepository(db.SQL)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.Upsert(ctx, mealDraft("", day.Add(time.Duration(i)*time.Hour), fmt.Sprintf("v%d", i), "a"))
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Errorf("Upsert failed: %v", err)
			}
		}

		if n := countRows(t, db.SQL, "meal_plans"); n != 1 {
			t.Errorf("Expected 1 plan, got %d", n)
		}
		if n := countRows(t, db.SQL, "meals"); n != 3 {
			t.Errorf("Expected 3 meals, got %d", n)
		}
		if n := countRows(t, db.SQL, "meal_ingredients"); n != 3 {
			t.Errorf("Expected 3 ingredients, got %d", n)
		}
	})

	t.Run("ReadsDuringUpsertsSeeWholePlans", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewMealRepository(db.SQL)
		userID := createUser(t, db.SQL, "d@example.com")
		if _, err := repo.Upsert(ctx, mealDraft(userID, day, "v0", "a")); err != nil {
			t.Fatalf("initial Upsert failed: %v", err)
		}

		done := make(chan struct{})
		upsertErr := make(chan error, 1)
		go func() {
			defer close(upsertErr)
			for i := 1; ; i++ {
				select {
				case <-done:
					return
				default:
				}
				if _, err := repo.Upsert(ctx, mealDraft(userID, day, fmt.Sprintf("v%d", i), "a", "b")); err != nil {
					upsertErr <- err
					return
				}
			}
		}()

		torn := 0
		for i := 0; i < 300; i++ {
			plans, err := repo.ListForUser(ctx, userID, day, day.AddDate(0, 0, 1))
			if err != nil {
				t.Fatalf("ListForUser failed: %v", err)
			}
			if len(plans) != 1 {
				t.Fatalf("Expected exactly 1 plan, got %d", len(plans))
			}
			if len(plans[0].Meals) != 3 {
				torn++
			}
		}
		close(done)
		if err := <-upsertErr; err != nil {
			t.Errorf("Upsert failed: %v", err)
		}
		if torn != 0 {
			t.Errorf("Expected every read to return 3 meals, got %d partial plans", torn)
		}
	})
}

func TestWorkoutRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewWorkoutRepository(db.SQL)
	userID := createUser(t, db.SQL, "c@example.com")
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	plan, err := ParseWorkoutPlan(oneWorkoutDay)
	if err != nil {
		t.Fatalf("ParseWorkoutPlan failed: %v", err)
	}
	plan.Days[0].Date = day.Format(DateLayout)
	drafts, _ := NormalizeWorkoutPlan(plan, userID)

	if _, err := repo.Upsert(ctx, drafts[0]); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	drafts[0].Workouts[0].Exercises = drafts[0].Workouts[0].Exercises[:1]
	stored, err := repo.Upsert(ctx, drafts[0])
	if err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	if n := countRows(t, db.SQL, "workout_plans"); n != 1 {
		t.Errorf("Expected 1 workout plan, got %d", n)
	}
	if n := countRows(t, db.SQL, "workouts"); n != 1 {
		t.Errorf("Expected 1 workout, got %d", n)
	}
	if n := countRows(t, db.SQL, "exercises"); n != 1 {
		t.Errorf("Expected 1 exercise from the latest plan, got %d", n)
	}

	plans, err := repo.ListForUser(ctx, userID, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != stored.ID {
		t.Fatalf("Expected the latest plan, got %+v", plans)
	}
	w := plans[0].Workouts[0]
	if w.Name != "Workout for 2024-03-10" || len(w.Exercises) != 1 || w.Exercises[0].Name != "Squats" {
		t.Errorf("Unexpected workout: %+v", w)
	}
	if w.Exercises[0].Reps != "3x15" || w.Exercises[0].Focus != "jambes" {
		t.Errorf("Unexpected exercise: %+v", w.Exercises[0])
	}
}

func TestDeletingUserRemovesPlans(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	userID := createUser(t, db.SQL, "e@example.com")
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := NewMealRepository(db.SQL).Upsert(ctx, mealDraft(userID, day, "Perso", "riz")); err != nil {
		t.Fatalf("meal Upsert failed: %v", err)
	}
	plan, err := ParseWorkoutPlan(oneWorkoutDay)
	if err != nil {
		t.Fatalf("ParseWorkoutPlan failed: %v", err)
	}
	plan.Days[0].Date = day.Format(DateLayout)
	drafts, _ := NormalizeWorkoutPlan(plan, userID)
	if _, err := NewWorkoutRepository(db.SQL).Upsert(ctx, drafts[0]); err != nil {
		t.Fatalf("workout Upsert failed: %v", err)
	}

	if _, err := db.SQL.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID); err != nil {
		t.Fatalf("Expected user delete to cascade, got %v", err)
	}
	for _, table := range []string{"meal_plans", "meals", "meal_ingredients", "meal_instructions", "workout_plans", "workouts", "exercises"} {
		if n := countRows(t, db.SQL, table); n != 0 {
			t.Errorf("Expected %s to be empty after deleting the user, got %d", table, n)
		}
	}
}
