package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"goalfit/internal/notify"
	"goalfit/internal/user"
)

// ActiveUserLister enumerates users eligible for reminders.
type ActiveUserLister interface {
	ListActive(ctx context.Context) ([]user.User, error)
}

// WeightLog answers whether a user logged a weight in [from, to).
type WeightLog interface {
	HasEntryBetween(ctx context.Context, userID string, from, to time.Time) (bool, error)
}

var reminderTmpl = template.Must(template.New("reminder").Parse(`<html><body>
<h1>Bonjour {{.Name}},</h1>
<p>C'est le moment de votre pesée hebdomadaire.</p>
<p>Enregistrer votre poids chaque semaine permet d'ajuster vos plans de repas et d'entraînement.</p>
<p><a href="{{.Link}}">Mettre à jour mon poids</a></p>
<p>L'équipe GoalFit</p>
</body></html>`))

const reminderSubject = "Votre pesée hebdomadaire"

// WeightReminder e-mails active users who have not logged a weight this week.
type WeightReminder struct {
	users       ActiveUserLister
	weights     WeightLog
	mailer      notify.Mailer
	frontendURL string
	loc         *time.Location
}

// NewWeightReminder creates a WeightReminder. Weeks start on Sunday in loc.
func NewWeightReminder(users ActiveUserLister, weights WeightLog, mailer notify.Mailer, frontendURL string, loc *time.Location) *WeightReminder {
	if loc == nil {
		loc = time.UTC
	}
	return &WeightReminder{users: users, weights: weights, mailer: mailer, frontendURL: strings.TrimRight(frontendURL, "/"), loc: loc}
}

// Send mails every eligible user and returns how many reminders went out.
// Per-user lookup or delivery failures are logged and skipped.
func (w *WeightReminder) Send(ctx context.Context, now time.Time) (int, error) {
	users, err := w.users.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active users: %w", err)
	}

	from, to := weekBounds(now.In(w.loc))
	sent := 0
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		has, err := w.weights.HasEntryBetween(ctx, u.ID, from, to)
		if err != nil {
			log.Printf("Warning: weight lookup failed for user %s: %v", u.ID, err)
			continue
		}
		if has {
			continue
		}

		body, err := w.render(u)
		if err != nil {
			return sent, err
		}
		if err := w.mailer.Send(ctx, notify.Message{To: u.Email, Subject: reminderSubject, HTML: body}); err != nil {
			log.Printf("Warning: weight reminder failed for user %s: %v", u.ID, err)
			continue
		}
		sent++
	}
	log.Printf("Weight reminders sent: %d of %d active users", sent, len(users))
	return sent, nil
}

func (w *WeightReminder) render(u user.User) (string, error) {
	name := u.Name
	if name == "" {
		name = "à vous"
	}
	var buf bytes.Buffer
	err := reminderTmpl.Execute(&buf, struct{ Name, Link string }{name, w.frontendURL + "/profil"})
	if err != nil {
		return "", fmt.Errorf("failed to render reminder: %w", err)
	}
	return buf.String(), nil
}

// weekBounds returns last Sunday 00:00 and the following Sunday 00:00 in t's location.
func weekBounds(t time.Time) (time.Time, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start := day.AddDate(0, 0, -int(day.Weekday()))
	return start, start.AddDate(0, 0, 7)
}
