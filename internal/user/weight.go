package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WeightRepository stores append-only weigh-ins.
type WeightRepository struct {
	db *sql.DB
}

// NewWeightRepository creates a new WeightRepository.
func NewWeightRepository(db *sql.DB) *WeightRepository {
	return &WeightRepository{db: db}
}

// Add appends a weight entry.
func (r *WeightRepository) Add(ctx context.Context, userID string, date time.Time, weightKg float64) (WeightEntry, error) {
	if weightKg <= 0 {
		return WeightEntry{}, fmt.Errorf("weight must be positive, got %v", weightKg)
	}
	e := WeightEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date.UTC(),
		WeightKg:  weightKg,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_weight_entries (id, user_id, date, weight_kg, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Date, e.WeightKg, e.CreatedAt,
	)
	if err != nil {
		return WeightEntry{}, fmt.Errorf("failed to add weight entry for user %s: %w", userID, err)
	}
	return e, nil
}

// HasEntryBetween reports whether the user logged a weight in [from, to).
func (r *WeightRepository) HasEntryBetween(ctx context.Context, userID string, from, to time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_weight_entries WHERE user_id = ? AND date >= ? AND date < ?`,
		userID, from.UTC(), to.UTC(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count weight entries for user %s: %w", userID, err)
	}
	return n > 0, nil
}
