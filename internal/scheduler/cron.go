package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Default schedules, in the configured timezone.
const (
	DefaultPlanRefreshSchedule    = "0 0 */2 * *"
	DefaultWeightReminderSchedule = "0 8 * * 1"
)

// Cron runs the plan refresh and the weight reminder on their schedules.
type Cron struct {
	c *cron.Cron
}

// NewCron registers both jobs. Every run gets ctx, so cancelling it aborts
// in-flight runs.
func NewCron(ctx context.Context, loc *time.Location, refreshSpec, reminderSpec string, s *Scheduler, r *WeightReminder) (*Cron, error) {
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	if _, err := c.AddFunc(refreshSpec, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			log.Printf("Warning: plan refresh aborted: %v", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid plan refresh schedule %q: %w", refreshSpec, err)
	}

	if r != nil {
		if _, err := c.AddFunc(reminderSpec, func() {
			if _, err := r.Send(ctx, time.Now()); err != nil {
				log.Printf("Warning: weight reminders aborted: %v", err)
			}
		}); err != nil {
			return nil, fmt.Errorf("invalid weight reminder schedule %q: %w", reminderSpec, err)
		}
	}
	return &Cron{c: c}, nil
}

// Start runs the jobs in the background.
func (c *Cron) Start() {
	c.c.Start()
	for _, e := range c.c.Entries() {
		log.Printf("Next scheduled run at %s", e.Next.Format(time.RFC3339))
	}
}

// Stop prevents new runs and waits for running jobs to finish.
func (c *Cron) Stop() {
	<-c.c.Stop().Done()
}
