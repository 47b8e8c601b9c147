package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"goalfit/internal/subscription"
	"goalfit/internal/user"
)

const (
	mealAgent    = "MealPlanner"
	workoutAgent = "WorkoutPlanner"
)

// ErrInvalidRequest is returned for generation requests without dates.
var ErrInvalidRequest = errors.New("invalid generation request")

// Completer is the generation client. *llm.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, agentName, prompt string) (string, error)
}

// ProfileSource loads stored profiles. *user.Repository satisfies it.
type ProfileSource interface {
	GetProfile(ctx context.Context, userID string) (*user.Profile, error)
}

// Deps are the collaborators shared by the meal and workout services.
type Deps struct {
	Generator Completer
	Gate      subscription.Gate
	Profiles  ProfileSource
	Fallback  *Fallback
	Now       func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) fallback() (*Fallback, error) {
	if d.Fallback != nil {
		return d.Fallback, nil
	}
	return LoadFallback(DefaultLocale)
}

func (d Deps) attributesFor(ctx context.Context, userID string) (UserAttributes, error) {
	p, err := d.Profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return UserAttributes{}, fmt.Errorf("%w: profile of user %s: %w", ErrNotFound, userID, err)
		}
		return UserAttributes{}, fmt.Errorf("%w: load profile of user %s: %v", ErrPersistence, userID, err)
	}
	return AttributesFromProfile(p, d.now()), nil
}

// unavailable logs the upstream, parse or schema detail and hides it from callers.
func unavailable(agent string, err error) error {
	logGenerationFailure(agent, err)
	return ErrGenerationUnavailable
}

func logGenerationFailure(agent string, err error) {
	var sv *SchemaViolation
	if errors.As(err, &sv) {
		log.Printf("Warning: %s response rejected at %s (expected %s, got %s)", agent, sv.Path, sv.Expected, sv.Got)
		return
	}
	log.Printf("Warning: %s generation failed: %v", agent, err)
}

func checkDates(dates []string) error {
	if len(dates) == 0 {
		return fmt.Errorf("%w: no dates", ErrInvalidRequest)
	}
	for _, d := range dates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidRequest, d)
		}
	}
	return nil
}
