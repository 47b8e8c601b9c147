package user

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a user or profile does not exist.
var ErrNotFound = errors.New("not found")

// User is an account known to the system.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Profile holds the attributes used to personalise generated plans.
// Zero values mean "not provided".
type Profile struct {
	UserID               string     `json:"userId"`
	Gender               string     `json:"gender"`
	DateOfBirth          *time.Time `json:"dateOfBirth,omitempty"`
	WeightKg             float64    `json:"weightKg"`
	HeightCm             float64    `json:"heightCm"`
	FitnessLevel         string     `json:"fitnessLevel"`
	Goal                 string     `json:"goal"`
	DietaryPreferences   []string   `json:"dietaryPreferences"`
	HealthConsiderations []string   `json:"healthConsiderations"`
	Equipment            []string   `json:"equipment"`
	DaysPerWeek          int        `json:"daysPerWeek"`
	MinutesPerDay        int        `json:"minutesPerDay"`
}

// Age returns the age in whole years at now, or 0 when the date of birth is unknown.
func (p *Profile) Age(now time.Time) int {
	if p.DateOfBirth == nil {
		return 0
	}
	dob := *p.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// WeightEntry is a single weigh-in.
type WeightEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Date      time.Time `json:"date"`
	WeightKg  float64   `json:"weightKg"`
	CreatedAt time.Time `json:"createdAt"`
}
