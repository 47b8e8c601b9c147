package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository is a database-backed repository for users and their profiles.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a user. An empty ID is replaced by a new UUID.
func (r *Repository) Create(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.IsActive, u.CreatedAt.UTC(),
	)
	if err != nil {
		return User{}, fmt.Errorf("failed to create user %s: %w", u.Email, err)
	}
	return u, nil
}

// Get returns a user by id.
func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, is_active, created_at FROM users WHERE id = ?`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return &u, nil
}

// List returns every user ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	return r.list(ctx, `SELECT id, email, name, is_active, created_at FROM users ORDER BY created_at, id`)
}

// ListActive returns users flagged as active.
func (r *Repository) ListActive(ctx context.Context) ([]User, error) {
	return r.list(ctx, `SELECT id, email, name, is_active, created_at FROM users WHERE is_active = 1 ORDER BY created_at, id`)
}

func (r *Repository) list(ctx context.Context, query string) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// SaveProfile creates or replaces the profile of a user.
func (r *Repository) SaveProfile(ctx context.Context, p Profile) error {
	dietary, err := encodeList(p.DietaryPreferences)
	if err != nil {
		return err
	}
	health, err := encodeList(p.HealthConsiderations)
	if err != nil {
		return err
	}
	equipment, err := encodeList(p.Equipment)
	if err != nil {
		return err
	}

	var dob sql.NullTime
	if p.DateOfBirth != nil {
		dob = sql.NullTime{Time: p.DateOfBirth.UTC(), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO user_profiles (
    user_id, gender, date_of_birth, weight_kg, height_cm, fitness_level, goal,
    dietary_preferences, health_considerations, equipment, days_per_week, minutes_per_day, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
    gender = excluded.gender,
    date_of_birth = excluded.date_of_birth,
    weight_kg = excluded.weight_kg,
    height_cm = excluded.height_cm,
    fitness_level = excluded.fitness_level,
    goal = excluded.goal,
    dietary_preferences = excluded.dietary_preferences,
    health_considerations = excluded.health_considerations,
    equipment = excluded.equipment,
    days_per_week = excluded.days_per_week,
    minutes_per_day = excluded.minutes_per_day,
    updated_at = excluded.updated_at`,
		p.UserID, p.Gender, dob, p.WeightKg, p.HeightCm, p.FitnessLevel, p.Goal,
		dietary, health, equipment, p.DaysPerWeek, p.MinutesPerDay, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save profile for user %s: %w", p.UserID, err)
	}
	return nil
}

// GetProfile returns the profile of a user, or ErrNotFound.
func (r *Repository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id, gender, date_of_birth, weight_kg, height_cm, fitness_level, goal,
       dietary_preferences, health_considerations, equipment, days_per_week, minutes_per_day
FROM user_profiles WHERE user_id = ?`, userID)

	var (
		p                         Profile
		dob                       sql.NullTime
		dietary, health, equipment string
	)
	err := row.Scan(&p.UserID, &p.Gender, &dob, &p.WeightKg, &p.HeightCm, &p.FitnessLevel, &p.Goal,
		&dietary, &health, &equipment, &p.DaysPerWeek, &p.MinutesPerDay)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile for user %s: %w", userID, err)
	}

	if dob.Valid {
		t := dob.Time
		p.DateOfBirth = &t
	}
	if p.DietaryPreferences, err = decodeList(dietary); err != nil {
		return nil, err
	}
	if p.HealthConsiderations, err = decodeList(health); err != nil {
		return nil, err
	}
	if p.Equipment, err = decodeList(equipment); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode list %q: %w", raw, err)
	}
	return items, nil
}
