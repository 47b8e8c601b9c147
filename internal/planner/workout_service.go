package planner

import (
	"context"
	"fmt"
	"log"
	"time"
)

// WorkoutStore is the persistence used by WorkoutService. *WorkoutRepository satisfies it.
type WorkoutStore interface {
	Upsert(ctx context.Context, draft WorkoutPlanDraft) (WorkoutPlan, error)
	ListForUser(ctx context.Context, userID string, from, to time.Time) ([]WorkoutPlan, error)
	ListDefaults(ctx context.Context, from, to time.Time) ([]WorkoutPlan, error)
	CountDefaults(ctx context.Context, from, to time.Time) (int, error)
}

// WorkoutService is the workout counterpart of MealService.
type WorkoutService struct {
	Deps
	store WorkoutStore
}

func NewWorkoutService(deps Deps, store WorkoutStore) *WorkoutService {
	return &WorkoutService{Deps: deps, store: store}
}

func (s *WorkoutService) Generate(ctx context.Context, req GenerationRequest) (ValidatedWorkoutPlan, error) {
	if err := checkDates(req.Dates); err != nil {
		return ValidatedWorkoutPlan{}, err
	}
	plan, err := s.generate(ctx, req.Attributes, req.Dates)
	if err != nil {
		return ValidatedWorkoutPlan{}, unavailable(workoutAgent, err)
	}
	return plan, nil
}

func (s *WorkoutService) generate(ctx context.Context, attrs UserAttributes, dates []string) (ValidatedWorkoutPlan, error) {
	prompt, err := BuildWorkoutPrompt(attrs, dates)
	if err != nil {
		return ValidatedWorkoutPlan{}, fmt.Errorf("failed to build workout prompt: %w", err)
	}
	raw, err := s.Generator.Complete(ctx, workoutAgent, prompt)
	if err != nil {
		return ValidatedWorkoutPlan{}, err
	}
	plan, err := ParseWorkoutPlan(raw)
	if err != nil {
		return ValidatedWorkoutPlan{}, err
	}
	got := make([]string, len(plan.Days))
	for i, d := range plan.Days {
		got[i] = d.Date
	}
	if err := checkDays(got, dates); err != nil {
		return ValidatedWorkoutPlan{}, err
	}
	return plan, nil
}

func (s *WorkoutService) GenerateForUser(ctx context.Context, userID string) ([]WorkoutPlan, error) {
	if !s.Gate.HasActiveSubscription(ctx, userID) {
		return nil, ErrForbidden
	}
	return s.RefreshUser(ctx, userID)
}

func (s *WorkoutService) RefreshUser(ctx context.Context, userID string) ([]WorkoutPlan, error) {
	attrs, err := s.attributesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.generate(ctx, attrs, RollingDates(s.now(), RollingWindowDays))
	if err != nil {
		return nil, unavailable(workoutAgent, err)
	}
	drafts, err := NormalizeWorkoutPlan(plan, userID)
	if err != nil {
		return nil, unavailable(workoutAgent, err)
	}
	return upsertWorkoutPlans(ctx, s.store, drafts)
}

// Domain names the plan kind in logs and alerts.
func (s *WorkoutService) Domain() string { return "workout" }

// Refresh is RefreshUser without the stored plans.
func (s *WorkoutService) Refresh(ctx context.Context, userID string) error {
	_, err := s.RefreshUser(ctx, userID)
	return err
}

func (s *WorkoutService) GetPlans(ctx context.Context, userID string) ([]WorkoutPlan, error) {
	if s.Gate.HasActiveSubscription(ctx, userID) {
		from, to := rollingWindow(s.now(), RollingWindowDays)
		plans, err := s.store.ListForUser(ctx, userID, from, to)
		if err != nil {
			return nil, err
		}
		if len(plans) > 0 {
			return plans, nil
		}
	}
	return s.DefaultPlans(ctx, RollingWindowDays)
}

func (s *WorkoutService) DefaultPlans(ctx context.Context, days int) ([]WorkoutPlan, error) {
	from, to := rollingWindow(s.now(), days)
	plans, err := s.store.ListDefaults(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(plans) > 0 {
		return plans, nil
	}
	plans, _, err = s.generateDefaults(ctx, RollingDates(s.now(), days))
	return plans, err
}

// RegenerateDefaults replaces the shared plans for the next days.
func (s *WorkoutService) RegenerateDefaults(ctx context.Context, days int) ([]WorkoutPlan, error) {
	plans, _, err := s.generateDefaults(ctx, RollingDates(s.now(), days))
	return plans, err
}

// EnsureDefaults generates shared plans for the rolling window only when none
// exist. It reports whether new plans were stored.
func (s *WorkoutService) EnsureDefaults(ctx context.Context) (bool, error) {
	from, to := rollingWindow(s.now(), RollingWindowDays)
	n, err := s.store.CountDefaults(ctx, from, to)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	_, stored, err := s.generateDefaults(ctx, RollingDates(s.now(), RollingWindowDays))
	return stored, err
}

func (s *WorkoutService) generateDefaults(ctx context.Context, dates []string) ([]WorkoutPlan, bool, error) {
	plan, err := s.generate(ctx, DefaultAttributes(), dates)
	if err != nil {
		logGenerationFailure(workoutAgent, err)
		log.Printf("Serving static default workout plans for %d days", len(dates))
		f, ferr := s.fallback()
		if ferr != nil {
			return nil, false, ferr
		}
		plans, ferr := f.defaultWorkoutPlans(dates, s.now())
		return plans, false, ferr
	}

	drafts, err := NormalizeWorkoutPlan(plan, "")
	if err != nil {
		return nil, false, err
	}
	plans, err := upsertWorkoutPlans(ctx, s.store, drafts)
	if err != nil {
		return nil, false, err
	}
	return plans, true, nil
}

func upsertWorkoutPlans(ctx context.Context, store WorkoutStore, drafts []WorkoutPlanDraft) ([]WorkoutPlan, error) {
	plans := make([]WorkoutPlan, 0, len(drafts))
	for _, d := range drafts {
		p, err := store.Upsert(ctx, d)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}
