package planner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"goalfit/internal/planner/plandb"

	"github.com/google/uuid"
)

// MealRepository stores meal plans, one per (user or default, day).
type MealRepository struct {
	queries *plandb.Queries
	db      *sql.DB
}

// NewMealRepository creates a new MealRepository.
func NewMealRepository(db *sql.DB) *MealRepository {
	return &MealRepository{
		queries: plandb.New(db),
		db:      db,
	}
}

// Upsert replaces the plan for the draft's owner and day with the draft.
// The existing graph is deleted innermost first and the new one inserted in
// the same transaction, so readers see either the old plan or the new one.
func (r *MealRepository) Upsert(ctx context.Context, draft MealPlanDraft) (MealPlan, error) {
	start, end := dayWindow(draft.Date)
	window := plandb.Window{Start: start, End: end}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return MealPlan{}, fmt.Errorf("%w: begin meal plan upsert: %v", ErrPersistence, err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	var existingID string
	if draft.UserID == "" {
		existingID, err = q.FindDefaultMealPlanID(ctx, window)
	} else {
		existingID, err = q.FindMealPlanIDByOwner(ctx, draft.UserID, window)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return MealPlan{}, fmt.Errorf("%w: find meal plan: %v", ErrPersistence, err)
	}

	if existingID != "" {
		steps := []func(context.Context, string) error{
			q.DeleteMealIngredientsByPlan,
			q.DeleteMealInstructionsByPlan,
			q.DeleteMealsByPlan,
			q.DeleteMealPlan,
		}
		for _, step := range steps {
			if err := step(ctx, existingID); err != nil {
				return MealPlan{}, fmt.Errorf("%w: delete meal plan %s: %v", ErrPersistence, existingID, err)
			}
		}
	}

	plan := MealPlan{
		ID:            uuid.NewString(),
		MealPlanDraft: draft,
		CreatedAt:     time.Now().UTC(),
	}
	plan.Date = start
	plan.IsDefault = draft.UserID == ""

	if err := insertMealGraph(ctx, q, plan); err != nil {
		return MealPlan{}, fmt.Errorf("%w: insert meal plan: %v", ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return MealPlan{}, fmt.Errorf("%w: commit meal plan: %v", ErrPersistence, err)
	}
	return plan, nil
}

func insertMealGraph(ctx context.Context, q *plandb.Queries, plan MealPlan) error {
	err := q.InsertMealPlan(ctx, plandb.MealPlan{
		ID:            plan.ID,
		UserID:        nullString(plan.UserID),
		Date:          plan.Date,
		IsDefault:     plan.IsDefault,
		TotalCalories: plan.TotalCalories,
		TotalProtein:  plan.TotalProtein,
		TotalCarbs:    plan.TotalCarbs,
		TotalFat:      plan.TotalFat,
		CreatedAt:     plan.CreatedAt,
	})
	if err != nil {
		return err
	}

	for i, m := range plan.Meals {
		mealID := uuid.NewString()
		err := q.InsertMeal(ctx, plandb.Meal{
			ID:              mealID,
			MealPlanID:      plan.ID,
			Slot:            string(m.Slot),
			Title:           m.Title,
			Calories:        m.Calories,
			Protein:         m.Protein,
			Carbs:           m.Carbs,
			Fat:             m.Fat,
			DurationMinutes: int64(m.DurationMinutes),
			Position:        int64(i),
		})
		if err != nil {
			return err
		}
		for j, text := range m.Ingredients {
			if err := q.InsertMealIngredient(ctx, plandb.MealLine{MealID: mealID, Position: int64(j), Text: text}); err != nil {
				return err
			}
		}
		for j, text := range m.Instructions {
			if err := q.InsertMealInstruction(ctx, plandb.MealLine{MealID: mealID, Position: int64(j), Text: text}); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListForUser returns the user's plans dated within [from, to], ordered by date.
func (r *MealRepository) ListForUser(ctx context.Context, userID string, from, to time.Time) ([]MealPlan, error) {
	w := plandb.Window{Start: from.UTC(), End: to.UTC()}
	return r.list(ctx, "meal plans for user "+userID, func(q *plandb.Queries) ([]plandb.MealPlan, error) {
		return q.ListMealPlansByOwner(ctx, userID, w)
	})
}

// ListDefaults returns the shared plans dated within [from, to], ordered by date.
func (r *MealRepository) ListDefaults(ctx context.Context, from, to time.Time) ([]MealPlan, error) {
	w := plandb.Window{Start: from.UTC(), End: to.UTC()}
	return r.list(ctx, "default meal plans", func(q *plandb.Queries) ([]plandb.MealPlan, error) {
		return q.ListDefaultMealPlans(ctx, w)
	})
}

// list reads plan rows and their children in one transaction so that a
// concurrent Upsert is seen either entirely or not at all.
func (r *MealRepository) list(ctx context.Context, what string, rowsFn func(*plandb.Queries) ([]plandb.MealPlan, error)) ([]MealPlan, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin read of %s: %v", ErrPersistence, what, err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	rows, err := rowsFn(q)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %v", ErrPersistence, what, err)
	}
	plans, err := loadMealPlans(ctx, q, rows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: end read of %s: %v", ErrPersistence, what, err)
	}
	return plans, nil
}

// CountDefaults returns the number of shared plans dated within [from, to].
func (r *MealRepository) CountDefaults(ctx context.Context, from, to time.Time) (int, error) {
	n, err := r.queries.CountDefaultMealPlans(ctx, plandb.Window{Start: from.UTC(), End: to.UTC()})
	if err != nil {
		return 0, fmt.Errorf("%w: count default meal plans: %v", ErrPersistence, err)
	}
	return int(n), nil
}

func loadMealPlans(ctx context.Context, q *plandb.Queries, rows []plandb.MealPlan) ([]MealPlan, error) {
	plans := make([]MealPlan, 0, len(rows))
	for _, row := range rows {
		meals, err := q.ListMealsByPlan(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list meals of plan %s: %v", ErrPersistence, row.ID, err)
		}
		ingredients, err := q.ListMealIngredientsByPlan(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list ingredients of plan %s: %v", ErrPersistence, row.ID, err)
		}
		instructions, err := q.ListMealInstructionsByPlan(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list instructions of plan %s: %v", ErrPersistence, row.ID, err)
		}

		byMeal := groupLines(ingredients)
		stepsByMeal := groupLines(instructions)

		plan := MealPlan{
			ID: row.ID,
			MealPlanDraft: MealPlanDraft{
				UserID:        row.UserID.String,
				Date:          row.Date.UTC(),
				IsDefault:     row.IsDefault,
				TotalCalories: row.TotalCalories,
				TotalProtein:  row.TotalProtein,
				TotalCarbs:    row.TotalCarbs,
				TotalFat:      row.TotalFat,
			},
			CreatedAt: row.CreatedAt,
		}
		for _, m := range meals {
			plan.Meals = append(plan.Meals, MealDraft{
				Slot:            MealSlot(m.Slot),
				Title:           m.Title,
				Ingredients:     byMeal[m.ID],
				Instructions:    stepsByMeal[m.ID],
				Calories:        m.Calories,
				Protein:         m.Protein,
				Carbs:           m.Carbs,
				Fat:             m.Fat,
				DurationMinutes: int(m.DurationMinutes),
			})
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func groupLines(lines []plandb.MealLine) map[string][]string {
	out := make(map[string][]string)
	for _, l := range lines {
		out[l.MealID] = append(out[l.MealID], l.Text)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
