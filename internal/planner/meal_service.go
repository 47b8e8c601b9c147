package planner

import (
	"context"
	"fmt"
	"log"
	"time"
)

// MealStore is the persistence used by MealService. *MealRepository satisfies it.
type MealStore interface {
	Upsert(ctx context.Context, draft MealPlanDraft) (MealPlan, error)
	ListForUser(ctx context.Context, userID string, from, to time.Time) ([]MealPlan, error)
	ListDefaults(ctx context.Context, from, to time.Time) ([]MealPlan, error)
	CountDefaults(ctx context.Context, from, to time.Time) (int, error)
}

// MealService runs the meal plan pipeline: prompt, completion, validation,
// normalization and upsert.
type MealService struct {
	Deps
	store MealStore
}

// NewMealService creates a new MealService.
func NewMealService(deps Deps, store MealStore) *MealService {
	return &MealService{Deps: deps, store: store}
}

// Generate returns a validated plan for the request without storing it.
func (s *MealService) Generate(ctx context.Context, req GenerationRequest) (ValidatedMealPlan, error) {
	if err := checkDates(req.Dates); err != nil {
		return ValidatedMealPlan{}, err
	}
	plan, err := s.generate(ctx, req.Attributes, req.Dates)
	if err != nil {
		return ValidatedMealPlan{}, unavailable(mealAgent, err)
	}
	return plan, nil
}

func (s *MealService) generate(ctx context.Context, attrs UserAttributes, dates []string) (ValidatedMealPlan, error) {
	prompt, err := BuildMealPrompt(attrs, dates)
	if err != nil {
		return ValidatedMealPlan{}, fmt.Errorf("failed to build meal prompt: %w", err)
	}
	raw, err := s.Generator.Complete(ctx, mealAgent, prompt)
	if err != nil {
		return ValidatedMealPlan{}, err
	}
	plan, err := ParseMealPlan(raw)
	if err != nil {
		return ValidatedMealPlan{}, err
	}
	got := make([]string, len(plan.Days))
	for i, d := range plan.Days {
		got[i] = d.Date
	}
	if err := checkDays(got, dates); err != nil {
		return ValidatedMealPlan{}, err
	}
	return plan, nil
}

// GenerateForUser regenerates the rolling window of custom plans for a
// subscribed user.
func (s *MealService) GenerateForUser(ctx context.Context, userID string) ([]MealPlan, error) {
	if !s.Gate.HasActiveSubscription(ctx, userID) {
		return nil, ErrForbidden
	}
	return s.RefreshUser(ctx, userID)
}

// RefreshUser regenerates custom plans from the user's profile without
// checking the subscription.
func (s *MealService) RefreshUser(ctx context.Context, userID string) ([]MealPlan, error) {
	attrs, err := s.attributesFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	plan, err := s.generate(ctx, attrs, RollingDates(s.now(), RollingWindowDays))
	if err != nil {
		return nil, unavailable(mealAgent, err)
	}
	drafts, err := NormalizeMealPlan(plan, userID)
	if err != nil {
		return nil, unavailable(mealAgent, err)
	}
	return upsertMealPlans(ctx, s.store, drafts)
}

// Domain names the plan kind in logs and alerts.
func (s *MealService) Domain() string { return "meal" }

// Refresh is RefreshUser without the stored plans.
func (s *MealService) Refresh(ctx context.Context, userID string) error {
	_, err := s.RefreshUser(ctx, userID)
	return err
}

// GetPlans returns the subscribed user's current plans, or the shared
// defaults when the user is not subscribed or has none yet.
func (s *MealService) GetPlans(ctx context.Context, userID string) ([]MealPlan, error) {
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

// DefaultPlans returns the stored shared plans for the next days, generating
// and storing them first when none exist.
func (s *MealService) DefaultPlans(ctx context.Context, days int) ([]MealPlan, error) {
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
func (s *MealService) RegenerateDefaults(ctx context.Context, days int) ([]MealPlan, error) {
	plans, _, err := s.generateDefaults(ctx, RollingDates(s.now(), days))
	return plans, err
}

// EnsureDefaults generates shared plans for the rolling window only when none
// exist. It reports whether new plans were stored.
func (s *MealService) EnsureDefaults(ctx context.Context) (bool, error) {
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

// generateDefaults falls back to the static table, unsaved, when generation fails.
func (s *MealService) generateDefaults(ctx context.Context, dates []string) ([]MealPlan, bool, error) {
	plan, err := s.generate(ctx, DefaultAttributes(), dates)
	if err != nil {
		logGenerationFailure(mealAgent, err)
		log.Printf("Serving static default meal plans for %d days", len(dates))
		f, ferr := s.fallback()
		if ferr != nil {
			return nil, false, ferr
		}
		plans, ferr := f.defaultMealPlans(dates, s.now())
		return plans, false, ferr
	}

	drafts, err := NormalizeMealPlan(plan, "")
	if err != nil {
		return nil, false, err
	}
	plans, err := upsertMealPlans(ctx, s.store, drafts)
	if err != nil {
		return nil, false, err
	}
	return plans, true, nil
}

func upsertMealPlans(ctx context.Context, store MealStore, drafts []MealPlanDraft) ([]MealPlan, error) {
	plans := make([]MealPlan, 0, len(drafts))
	for _, d := range drafts {
		p, err := store.Upsert(ctx, d)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}
