package plandb

import (
	"context"
)

const findMealPlanIDByOwner = `-- name: FindMealPlanIDByOwner :one
SELECT id FROM meal_plans
WHERE user_id = ? AND date >= ? AND date <= ?
LIMIT 1
`

func (q *Queries) FindMealPlanIDByOwner(ctx context.Context, userID string, w Window) (string, error) {
	var id string
	err := q.db.QueryRowContext(ctx, findMealPlanIDByOwner, userID, w.Start, w.End).Scan(&id)
	return id, err
}

const findDefaultMealPlanID = `-- name: FindDefaultMealPlanID :one
SELECT id FROM meal_plans
WHERE is_default = 1 AND date >= ? AND date <= ?
LIMIT 1
`

func (q *Queries) FindDefaultMealPlanID(ctx context.Context, w Window) (string, error) {
	var id string
	err := q.db.QueryRowContext(ctx, findDefaultMealPlanID, w.Start, w.End).Scan(&id)
	return id, err
}

const deleteMealIngredientsByPlan = `-- name: DeleteMealIngredientsByPlan :exec
DELETE FROM meal_ingredients WHERE meal_id IN (SELECT id FROM meals WHERE meal_plan_id = ?)
`

func (q *Queries) DeleteMealIngredientsByPlan(ctx context.Context, planID string) error {
	_, err := q.db.ExecContext(ctx, deleteMealIngredientsByPlan, planID)
	return err
}

const deleteMealInstructionsByPlan = `-- name: DeleteMealInstructionsByPlan :exec
DELETE FROM meal_instructions WHERE meal_id IN (SELECT id FROM meals WHERE meal_plan_id = ?)
`

func (q *Queries) DeleteMealInstructionsByPlan(ctx context.Context, planID string) error {
	_, err := q.db.ExecContext(ctx, deleteMealInstructionsByPlan, planID)
	return err
}

const deleteMealsByPlan = `-- name: DeleteMealsByPlan :exec
DELETE FROM meals WHERE meal_plan_id = ?
`

func (q *Queries) DeleteMealsByPlan(ctx context.Context, planID string) error {
	_, err := q.db.ExecContext(ctx, deleteMealsByPlan, planID)
	return err
}

const deleteMealPlan = `-- name: DeleteMealPlan :exec
DELETE FROM meal_plans WHERE id = ?
`

func (q *Queries) DeleteMealPlan(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteMealPlan, id)
	return err
}

const insertMealPlan = `-- name: InsertMealPlan :exec
INSERT INTO meal_plans (id, user_id, date, is_default, total_calories, total_protein, total_carbs, total_fat, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertMealPlan(ctx context.Context, arg MealPlan) error {
	_, err := q.db.ExecContext(ctx, insertMealPlan,
		arg.ID,
		arg.UserID,
		arg.Date,
		arg.IsDefault,
		arg.TotalCalories,
		arg.TotalProtein,
		arg.TotalCarbs,
		arg.TotalFat,
		arg.CreatedAt,
	)
	return err
}

const insertMeal = `-- name: InsertMeal :exec
INSERT INTO meals (id, meal_plan_id, slot, title, calories, protein, carbs, fat, duration_minutes, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertMeal(ctx context.Context, arg Meal) error {
	_, err := q.db.ExecContext(ctx, insertMeal,
		arg.ID,
		arg.MealPlanID,
		arg.Slot,
		arg.Title,
		arg.Calories,
		arg.Protein,
		arg.Carbs,
		arg.Fat,
		arg.DurationMinutes,
		arg.Position,
	)
	return err
}

const insertMealIngredient = `-- name: InsertMealIngredient :exec
INSERT INTO meal_ingredients (meal_id, position, text) VALUES (?, ?, ?)
`

func (q *Queries) InsertMealIngredient(ctx context.Context, arg MealLine) error {
	_, err := q.db.ExecContext(ctx, insertMealIngredient, arg.MealID, arg.Position, arg.Text)
	return err
}

const insertMealInstruction = `-- name: InsertMealInstruction :exec
INSERT INTO meal_instructions (meal_id, position, text) VALUES (?, ?, ?)
`

func (q *Queries) InsertMealInstruction(ctx context.Context, arg MealLine) error {
	_, err := q.db.ExecContext(ctx, insertMealInstruction, arg.MealID, arg.Position, arg.Text)
	return err
}

const mealPlanColumns = `id, user_id, date, is_default, total_calories, total_protein, total_carbs, total_fat, created_at`

const listMealPlansByOwner = `-- name: ListMealPlansByOwner :many
SELECT ` + mealPlanColumns + ` FROM meal_plans
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date
`

func (q *Queries) ListMealPlansByOwner(ctx context.Context, userID string, w Window) ([]MealPlan, error) {
	return q.listMealPlans(ctx, listMealPlansByOwner, userID, w.Start, w.End)
}

const listDefaultMealPlans = `-- name: ListDefaultMealPlans :many
SELECT ` + mealPlanColumns + ` FROM meal_plans
WHERE is_default = 1 AND date >= ? AND date <= ?
ORDER BY date
`

func (q *Queries) ListDefaultMealPlans(ctx context.Context, w Window) ([]MealPlan, error) {
	return q.listMealPlans(ctx, listDefaultMealPlans, w.Start, w.End)
}

func (q *Queries) listMealPlans(ctx context.Context, query string, args ...interface{}) ([]MealPlan, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MealPlan
	for rows.Next() {
		var i MealPlan
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Date,
			&i.IsDefault,
			&i.TotalCalories,
			&i.TotalProtein,
			&i.TotalCarbs,
			&i.TotalFat,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countDefaultMealPlans = `-- name: CountDefaultMealPlans :one
SELECT COUNT(*) FROM meal_plans WHERE is_default = 1 AND date >= ? AND date <= ?
`

func (q *Queries) CountDefaultMealPlans(ctx context.Context, w Window) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countDefaultMealPlans, w.Start, w.End).Scan(&count)
	return count, err
}

const listMealsByPlan = `-- name: ListMealsByPlan :many
SELECT id, meal_plan_id, slot, title, calories, protein, carbs, fat, duration_minutes, position
FROM meals WHERE meal_plan_id = ?
ORDER BY position
`

func (q *Queries) ListMealsByPlan(ctx context.Context, planID string) ([]Meal, error) {
	rows, err := q.db.QueryContext(ctx, listMealsByPlan, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Meal
	for rows.Next() {
		var i Meal
		if err := rows.Scan(
			&i.ID,
			&i.MealPlanID,
			&i.Slot,
			&i.Title,
			&i.Calories,
			&i.Protein,
			&i.Carbs,
			&i.Fat,
			&i.DurationMinutes,
			&i.Position,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listMealIngredientsByPlan = `-- name: ListMealIngredientsByPlan :many
SELECT mi.meal_id, mi.position, mi.text
FROM meal_ingredients mi JOIN meals m ON m.id = mi.meal_id
WHERE m.meal_plan_id = ?
ORDER BY mi.meal_id, mi.position
`

func (q *Queries) ListMealIngredientsByPlan(ctx context.Context, planID string) ([]MealLine, error) {
	return q.listMealLines(ctx, listMealIngredientsByPlan, planID)
}

const listMealInstructionsByPlan = `-- name: ListMealInstructionsByPlan :many
SELECT mi.meal_id, mi.position, mi.text
FROM meal_instructions mi JOIN meals m ON m.id = mi.meal_id
WHERE m.meal_plan_id = ?
ORDER BY mi.meal_id, mi.position
`

func (q *Queries) ListMealInstructionsByPlan(ctx context.Context, planID string) ([]MealLine, error) {
	return q.listMealLines(ctx, listMealInstructionsByPlan, planID)
}

func (q *Queries) listMealLines(ctx context.Context, query, planID string) ([]MealLine, error) {
	rows, err := q.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MealLine
	for rows.Next() {
		var i MealLine
		if err := rows.Scan(&i.MealID, &i.Position, &i.Text); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
