package plandb

import (
	"context"
)

const findWorkoutPlanIDByOwner = `-- name: FindWorkoutPlanIDByOwner :one
SELECT id FROM workout_plans
WHERE user_id = ? AND date >= ? AND date <= ?
LIMIT 1
`

func (q *Queries) FindWorkoutPlanIDByOwner(ctx context.Context, userID string, w Window) (string, error) {
	var id string
	err := q.db.QueryRowContext(ctx, findWorkoutPlanIDByOwner, userID, w.Start, w.End).Scan(&id)
	return id, err
}

const findDefaultWorkoutPlanID = `-- name: FindDefaultWorkoutPlanID :one
SELECT id FROM workout_plans
WHERE is_default = 1 AND date >= ? AND date <= ?
LIMIT 1
`

func (q *Queries) FindDefaultWorkoutPlanID(ctx context.Context, w Window) (string, error) {
	var id string
	err := q.db.QueryRowContext(ctx, findDefaultWorkoutPlanID, w.Start, w.End).Scan(&id)
	return id, err
}

const deleteExercisesByPlan = `-- name: DeleteExercisesByPlan :exec
DELETE FROM exercises WHERE workout_id IN (SELECT id FROM workouts WHERE workout_plan_id = ?)
`

func (q *Queries) DeleteExercisesByPlan(ctx context.Context, planID string) error {
	_, err := q.db.ExecContext(ctx, deleteExercisesByPlan, planID)
	return err
}

const deleteWorkoutsByPlan = `-- name: DeleteWorkoutsByPlan :exec
DELETE FROM workouts WHERE workout_plan_id = ?
`

func (q *Queries) DeleteWorkoutsByPlan(ctx context.Context, planID string) error {
	_, err := q.db.ExecContext(ctx, deleteWorkoutsByPlan, planID)
	return err
}

const deleteWorkoutPlan = `-- name: DeleteWorkoutPlan :exec
DELETE FROM workout_plans WHERE id = ?
`

func (q *Queries) DeleteWorkoutPlan(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteWorkoutPlan, id)
	return err
}

const insertWorkoutPlan = `-- name: InsertWorkoutPlan :exec
INSERT INTO workout_plans (id, user_id, date, is_default, total_calories, total_minutes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertWorkoutPlan(ctx context.Context, arg WorkoutPlan) error {
	_, err := q.db.ExecContext(ctx, insertWorkoutPlan,
		arg.ID,
		arg.UserID,
		arg.Date,
		arg.IsDefault,
		arg.TotalCalories,
		arg.TotalMinutes,
		arg.CreatedAt,
	)
	return err
}

const insertWorkout = `-- name: InsertWorkout :exec
INSERT INTO workouts (id, workout_plan_id, name, description, duration_minutes, intensity, estimated_calories, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertWorkout(ctx context.Context, arg Workout) error {
	_, err := q.db.ExecContext(ctx, insertWorkout,
		arg.ID,
		arg.WorkoutPlanID,
		arg.Name,
		arg.Description,
		arg.DurationMinutes,
		arg.Intensity,
		arg.EstimatedCalories,
		arg.Position,
	)
	return err
}

const insertExercise = `-- name: InsertExercise :exec
INSERT INTO exercises (id, workout_id, name, description, reps, duration_minutes, focus, estimated_calories, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertExercise(ctx context.Context, arg Exercise) error {
	_, err := q.db.ExecContext(ctx, insertExercise,
		arg.ID,
		arg.WorkoutID,
		arg.Name,
		arg.Description,
		arg.Reps,
		arg.DurationMinutes,
		arg.Focus,
		arg.EstimatedCalories,
		arg.Position,
	)
	return err
}

const workoutPlanColumns = `id, user_id, date, is_default, total_calories, total_minutes, created_at`

const listWorkoutPlansByOwner = `-- name: ListWorkoutPlansByOwner :many
SELECT ` + workoutPlanColumns + ` FROM workout_plans
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date
`

func (q *Queries) ListWorkoutPlansByOwner(ctx context.Context, userID string, w Window) ([]WorkoutPlan, error) {
	return q.listWorkoutPlans(ctx, listWorkoutPlansByOwner, userID, w.Start, w.End)
}

const listDefaultWorkoutPlans = `-- name: ListDefaultWorkoutPlans :many
SELECT ` + workoutPlanColumns + ` FROM workout_plans
WHERE is_default = 1 AND date >= ? AND date <= ?
ORDER BY date
`

func (q *Queries) ListDefaultWorkoutPlans(ctx context.Context, w Window) ([]WorkoutPlan, error) {
	return q.listWorkoutPlans(ctx, listDefaultWorkoutPlans, w.Start, w.End)
}

func (q *Queries) listWorkoutPlans(ctx context.Context, query string, args ...interface{}) ([]WorkoutPlan, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WorkoutPlan
	for rows.Next() {
		var i WorkoutPlan
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Date,
			&i.IsDefault,
			&i.TotalCalories,
			&i.TotalMinutes,
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

const countDefaultWorkoutPlans = `-- name: CountDefaultWorkoutPlans :one
SELECT COUNT(*) FROM workout_plans WHERE is_default = 1 AND date >= ? AND date <= ?
`

func (q *Queries) CountDefaultWorkoutPlans(ctx context.Context, w Window) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countDefaultWorkoutPlans, w.Start, w.End).Scan(&count)
	return count, err
}

const listWorkoutsByPlan = `-- name: ListWorkoutsByPlan :many
SELECT id, workout_plan_id, name, description, duration_minutes, intensity, estimated_calories, position
FROM workouts WHERE workout_plan_id = ?
ORDER BY position
`

func (q *Queries) ListWorkoutsByPlan(ctx context.Context, planID string) ([]Workout, error) {
	rows, err := q.db.QueryContext(ctx, listWorkoutsByPlan, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Workout
	for rows.Next() {
		var i Workout
		if err := rows.Scan(
			&i.ID,
			&i.WorkoutPlanID,
			&i.Name,
			&i.Description,
			&i.DurationMinutes,
			&i.Intensity,
			&i.EstimatedCalories,
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

const listExercisesByPlan = `-- name: ListExercisesByPlan :many
SELECT e.id, e.workout_id, e.name, e.description, e.reps, e.duration_minutes, e.focus, e.estimated_calories, e.position
FROM exercises e JOIN workouts w ON w.id = e.workout_id
WHERE w.workout_plan_id = ?
ORDER BY e.workout_id, e.position
`

func (q *Queries) ListExercisesByPlan(ctx context.Context, planID string) ([]Exercise, error) {
	rows, err := q.db.QueryContext(ctx, listExercisesByPlan, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Exercise
	for rows.Next() {
		var i Exercise
		if err := rows.Scan(
			&i.ID,
			&i.WorkoutID,
			&i.Name,
			&i.Description,
			&i.Reps,
			&i.DurationMinutes,
			&i.Focus,
			&i.EstimatedCalories,
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
