package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"goalfit/internal/notify"
	"goalfit/internal/subscription"
	"goalfit/internal/user"
)

// State is a step of the per-user refresh state machine.
type State string

const (
	StateStart             State = "start"
	StateCheckSubscription State = "check_subscription"
	StateGenerateCustom    State = "generate_custom"
	StateEnsureDefault     State = "ensure_default"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Refresher regenerates one plan domain. *planner.MealService and
// *planner.WorkoutService satisfy it.
type Refresher interface {
	Domain() string
	Refresh(ctx context.Context, userID string) error
	EnsureDefaults(ctx context.Context) (bool, error)
}

// UserLister enumerates the users visited on each tick.
type UserLister interface {
	List(ctx context.Context) ([]user.User, error)
}

// Outcome is where one user ended up for one tick.
type Outcome struct {
	UserID string
	Path   State
	State  State
	Errors []error
}

// Report summarises a tick.
type Report struct {
	StartedAt time.Time
	Duration  time.Duration
	Processed int
	Custom    int
	Defaults  int
	Failed    int
	Outcomes  []Outcome
}

// Scheduler walks every user once per tick and refreshes their plans.
type Scheduler struct {
	users      UserLister
	gate       subscription.Gate
	refreshers []Refresher
	alerter    notify.Alerter
}

// New creates a Scheduler. A nil alerter disables failure alerts.
func New(users UserLister, gate subscription.Gate, alerter notify.Alerter, refreshers ...Refresher) *Scheduler {
	return &Scheduler{users: users, gate: gate, refreshers: refreshers, alerter: alerter}
}

// RunOnce processes every user sequentially. A failing user is recorded in the
// report and never stops the batch; only listing the users can fail the tick.
func (s *Scheduler) RunOnce(ctx context.Context) (Report, error) {
	report := Report{StartedAt: time.Now()}

	users, err := s.users.List(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list users: %w", err)
	}
	log.Printf("Plan refresh started for %d users", len(users))

	// Defaults are shared, so each domain is ensured at most once per tick and
	// its result reused for every later unsubscribed user.
	ensured := make(map[string]error)
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out := s.process(ctx, u.ID, ensured)
		report.Outcomes = append(report.Outcomes, out)
		report.Processed++
		switch out.Path {
		case StateGenerateCustom:
			report.Custom++
		case StateEnsureDefault:
			report.Defaults++
		}
		if out.State == StateFailed {
			report.Failed++
			for _, e := range out.Errors {
				log.Printf("Warning: plan refresh failed for user %s: %v", u.ID, e)
			}
		}
	}
	report.Duration = time.Since(report.StartedAt)

	log.Printf("Plan refresh finished: %d processed, %d custom, %d default, %d failed in %s",
		report.Processed, report.Custom, report.Defaults, report.Failed, report.Duration.Round(time.Millisecond))

	if report.Failed > 0 && s.alerter != nil {
		if err := s.alerter.Alert(ctx, FormatReport(report)); err != nil {
			log.Printf("Warning: failed to send refresh alert: %v", err)
		}
	}
	return report, nil
}

func (s *Scheduler) process(ctx context.Context, userID string, ensured map[string]error) Outcome {
	out := Outcome{UserID: userID, State: StateStart}

	for out.State != StateDone && out.State != StateFailed {
		switch out.State {
		case StateStart:
			out.State = StateCheckSubscription
		case StateCheckSubscription:
			if s.gate.HasActiveSubscription(ctx, userID) {
				out.Path = StateGenerateCustom
			} else {
				out.Path = StateEnsureDefault
			}
			out.State = out.Path
		case StateGenerateCustom:
			for _, r := range s.refreshers {
				if err := r.Refresh(ctx, userID); err != nil {
					out.Errors = append(out.Errors, fmt.Errorf("%s: %w", r.Domain(), err))
				}
			}
			out.State = settle(out.Errors)
		case StateEnsureDefault:
			for _, r := range s.refreshers {
				err, done := ensured[r.Domain()]
				if !done {
					var stored bool
					stored, err = r.EnsureDefaults(ctx)
					ensured[r.Domain()] = err
					if stored {
						log.Printf("Stored default %s plans for the rolling window", r.Domain())
					}
				}
				if err != nil {
					out.Errors = append(out.Errors, fmt.Errorf("%s defaults: %w", r.Domain(), err))
				}
			}
			out.State = settle(out.Errors)
		}
	}
	return out
}

func settle(errs []error) State {
	if len(errs) > 0 {
		return StateFailed
	}
	return StateDone
}

// FormatReport renders a tick summary as Telegram Markdown.
func FormatReport(r Report) string {
	var sb strings.Builder
	sb.WriteString("⚠️ *Plan refresh*\n")
	fmt.Fprintf(&sb, "%d processed, %d custom, %d default\n", r.Processed, r.Custom, r.Defaults)
	fmt.Fprintf(&sb, "❌ *%d failed*\n", r.Failed)
	for _, o := range r.Outcomes {
		if o.State != StateFailed {
			continue
		}
		msgs := make([]string, 0, len(o.Errors))
		for _, e := range o.Errors {
			msgs = append(msgs, e.Error())
		}
		fmt.Fprintf(&sb, "• `%s`: %s\n", o.UserID, strings.Join(msgs, "; "))
	}
	return sb.String()
}
