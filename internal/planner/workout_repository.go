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

// WorkoutRepository stores workout plans, one per (user or default, day).
type WorkoutRepository struct {
	queries *plandb.Queries
	db      *sql.DB
}

// NewWorkoutRepository creates a new WorkoutRepository.
func NewWorkoutRepository(db *sql.DB) *WorkoutRepository {
	return &WorkoutRepository{
		queries: plandb.New(db),
		db:      db,
	}
}

// Upsert replaces the plan for the draft's owner and day with the draft,
// deleting exercises, then workouts, then the plan row in one transaction.
func (r *WorkoutRepository) Upsert(ctx context.Context, draft WorkoutPlanDraft) (WorkoutPlan, error) {
	start, end := dayWindow(draft.Date)
	window := plandb.Window{Start: start, End: end}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return WorkoutPlan{}, fmt.Errorf("%w: begin workout plan upsert: %v", ErrPersistence, err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	var existingID string
	if draft.UserID == "" {
		existingID, err = q.FindDefaultWorkoutPlanID(ctx, window)
	} else {
		existingID, err = q.FindWorkoutPlanIDByOwner(ctx, draft.UserID, window)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return WorkoutPlan{}, fmt.Errorf("%w: find workout plan: %v", ErrPersistence, err)
	}

	if existingID != "" {
		steps := []func(context.Context, string) error{
			q.DeleteExercisesByPlan,
			q.DeleteWorkoutsByPlan,
			q.DeleteWorkoutPlan,
		}
		for _, step := range steps {
			if err := step(ctx, existingID); err != nil {
				return WorkoutPlan{}, fmt.Errorf("%w: delete workout plan %s: %v", ErrPersistence, existingID, err)
			}
		}
	}

	plan := WorkoutPlan{
		ID:               uuid.NewString(),
		WorkoutPlanDraft: draft,
		CreatedAt:        time.Now().UTC(),
	}
	plan.Date = start
	plan.IsDefault = draft.UserID == ""

	if err := insertWorkoutGraph(ctx, q, plan); err != nil {
		return WorkoutPlan{}, fmt.Errorf("%w: insert workout plan: %v", ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return WorkoutPlan{}, fmt.Errorf("%w: commit workout plan: %v", ErrPersistence, err)
	}
	return plan, nil
}

func insertWorkoutGraph(ctx context.Context, q *plandb.Queries, plan WorkoutPlan) error {
	err := q.InsertWorkoutPlan(ctx, plandb.WorkoutPlan{
		ID:            plan.ID,
		UserID:        nullString(plan.UserID),
		Date:          plan.Date,
		IsDefault:     plan.IsDefault,
		TotalCalories: plan.TotalCalories,
		TotalMinutes:  int64(plan.TotalMinutes),
		CreatedAt:     plan.CreatedAt,
	})
	if err != nil {
		return err
	}

	for i, w := range plan.Workouts {
		workoutID := uuid.NewString()
		err := q.InsertWorkout(ctx, plandb.Workout{
			ID:                workoutID,
			WorkoutPlanID:     plan.ID,
			Name:              w.Name,
			Description:       w.Description,
			DurationMinutes:   int64(w.DurationMinutes),
			Intensity:         w.Intensity,
			EstimatedCalories: w.EstimatedCalories,
			Position:          int64(i),
		})
		if err != nil {
			return err
		}
		for j, e := range w.Exercises {
			err := q.InsertExercise(ctx, plandb.Exercise{
				ID:                uuid.NewString(),
				WorkoutID:         workoutID,
				Name:              e.Name,
				Description:       e.Description,
				Reps:              e.Reps,
				DurationMinutes:   int64(e.DurationMinutes),
				Focus:             e.Focus,
				EstimatedCalories: e.EstimatedCalories,
				Position:          int64(j),
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// ListForUser returns the user's plans dated within [from, to], ordered by date.
func (r *WorkoutRepository) ListForUser(ctx context.Context, userID string, from, to time.Time) ([]WorkoutPlan, error) {
	w := plandb.Window{Start: from.UTC(), End: to.UTC()}
	return r.list(ctx, "workout plans for user "+userID, func(q *plandb.Queries) ([]plandb.WorkoutPlan, error) {
		return q.ListWorkoutPlansByOwner(ctx, userID, w)
	})
}

// ListDefaults returns the shared plans dated within [from, to], ordered by date.
func (r *WorkoutRepository) ListDefaults(ctx context.Context, from, to time.Time) ([]WorkoutPlan, error) {
	w := plandb.Window{Start: from.UTC(), End: to.UTC()}
	return r.list(ctx, "default workout plans", func(q *plandb.Queries) ([]plandb.WorkoutPlan, error) {
		return q.ListDefaultWorkoutPlans(ctx, w)
	})
}

func (r *WorkoutRepository) list(ctx context.Context, what string, rowsFn func(*plandb.Queries) ([]plandb.WorkoutPlan, error)) ([]WorkoutPlan, error) {
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
	plans, err := loadWorkoutPlans(ctx, q, rows)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: end read of %s: %v", ErrPersistence, what, err)
	}
	return plans, nil
}

// CountDefaults returns the number of shared plans dated within [from, to].
func (r *WorkoutRepository) CountDefaults(ctx context.Context, from, to time.Time) (int, error) {
	n, err := r.queries.CountDefaultWorkoutPlans(ctx, plandb.Window{Start: from.UTC(), End: to.UTC()})
	if err != nil {
		return 0, fmt.Errorf("%w: count default workout plans: %v", ErrPersistence, err)
	}
	return int(n), nil
}

func loadWorkoutPlans(ctx context.Context, q *plandb.Queries, rows []plandb.WorkoutPlan) ([]WorkoutPlan, error) {
	plans := make([]WorkoutPlan, 0, len(rows))
	for _, row := range rows {
		workouts, err := q.ListWorkoutsByPlan(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list workouts of plan %s: %v", ErrPersistence, row.ID, err)
		}
		exercises, err := q.ListExercisesByPlan(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list exercises of plan %s: %v", ErrPersistence, row.ID, err)
		}

		byWorkout := make(map[string][]ExerciseDraft)
		for _, e := range exercises {
			byWorkout[e.WorkoutID] = append(byWorkout[e.WorkoutID], ExerciseDraft{
				Name:              e.Name,
				Description:       e.Description,
				Reps:              e.Reps,
				DurationMinutes:   int(e.DurationMinutes),
				Focus:             e.Focus,
				EstimatedCalories: e.EstimatedCalories,
			})
		}

		plan := WorkoutPlan{
			ID: row.ID,
			WorkoutPlanDraft: WorkoutPlanDraft{
				UserID:        row.UserID.String,
				Date:          row.Date.UTC(),
				IsDefault:     row.IsDefault,
				TotalCalories: row.TotalCalories,
				TotalMinutes:  int(row.TotalMinutes),
			},
			CreatedAt: row.CreatedAt,
		}
		for _, w := range workouts {
			plan.Workouts = append(plan.Workouts, WorkoutDraft{
				Name:              w.Name,
				Description:       w.Description,
				DurationMinutes:   int(w.DurationMinutes),
				Intensity:         w.Intensity,
				EstimatedCalories: w.EstimatedCalories,
				Exercises:         byWorkout[w.ID],
			})
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
