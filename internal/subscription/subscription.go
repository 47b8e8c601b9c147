package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

// Subscription statuses mirrored from the billing provider.
const (
	StatusActive   = "ACTIVE"
	StatusCanceled = "CANCELED"
	StatusPastDue  = "PAST_DUE"
)

// Plan describes the single paid offer.
type Plan struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Interval string  `json:"interval"`
}

// ProPlan is the only subscription offered.
var ProPlan = Plan{Name: "Pro Plan", Price: 9.99, Currency: "USD", Interval: "month"}

// Gate answers whether a user may receive custom plans.
type Gate interface {
	HasActiveSubscription(ctx context.Context, userID string) bool
}

// Subscription is the stored billing state of a user.
type Subscription struct {
	UserID           string
	Status           string
	CurrentPeriodEnd *time.Time
	UpdatedAt        time.Time
}

// Repository is the SQLite-backed Gate.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// HasActiveSubscription reports whether the user's subscription status is ACTIVE.
// Lookup errors are logged and treated as "not subscribed".
func (r *Repository) HasActiveSubscription(ctx context.Context, userID string) bool {
	s, err := r.Get(ctx, userID)
	if err != nil {
		log.Printf("Warning: subscription lookup failed for user %s: %v", userID, err)
		return false
	}
	return s != nil && s.Status == StatusActive
}

// Get returns the subscription of a user, or nil when none exists.
func (r *Repository) Get(ctx context.Context, userID string) (*Subscription, error) {
	var (
		s   Subscription
		end sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, status, current_period_end, updated_at FROM subscriptions WHERE user_id = ?`, userID,
	).Scan(&s.UserID, &s.Status, &end, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription for user %s: %w", userID, err)
	}
	if end.Valid {
		t := end.Time
		s.CurrentPeriodEnd = &t
	}
	return &s, nil
}

// Set creates or replaces the subscription state of a user.
func (r *Repository) Set(ctx context.Context, userID, status string, periodEnd *time.Time) error {
	var end sql.NullTime
	if periodEnd != nil {
		end = sql.NullTime{Time: periodEnd.UTC(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO subscriptions (user_id, status, current_period_end, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    status = excluded.status,
    current_period_end = excluded.current_period_end,
    updated_at = excluded.updated_at`,
		userID, status, end, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to set subscription for user %s: %w", userID, err)
	}
	return nil
}
