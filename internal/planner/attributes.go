package planner

import (
	"time"

	"goalfit/internal/user"
)

// DateLayout is the ISO calendar date format used in prompts and payloads.
const DateLayout = "2006-01-02"

// RollingWindowDays is the number of days, today included, considered current.
const RollingWindowDays = 7

// Availability is how much time a user can train.
type Availability struct {
	DaysPerWeek   int `json:"daysPerWeek"`
	MinutesPerDay int `json:"minutesPerDay"`
}

// UserAttributes is the per-request view of a user fed to the prompt builders.
type UserAttributes struct {
	Gender               string       `json:"gender"`
	Age                  int          `json:"age"`
	Weight               float64      `json:"weight"`
	Height               float64      `json:"height"`
	FitnessLevel         string       `json:"fitnessLevel"`
	Goal                 string       `json:"goal"`
	DietaryPreferences   []string     `json:"dietaryPreferences,omitempty"`
	HealthConsiderations []string     `json:"healthConsiderations,omitempty"`
	Equipment            []string     `json:"equipment,omitempty"`
	Availability         Availability `json:"availability"`
}

// GenerationRequest pairs attributes with the ordered list of target dates.
type GenerationRequest struct {
	Attributes UserAttributes `json:"user"`
	Dates      []string       `json:"dates"`
}

// DefaultAttributes describes the anonymous user used for shared default plans.
func DefaultAttributes() UserAttributes {
	return UserAttributes{
		Gender:       "homme",
		Age:          30,
		Weight:       70,
		Height:       170,
		FitnessLevel: "débutant",
		Goal:         "maintenance",
		Equipment:    []string{"bodyweight"},
		Availability: Availability{DaysPerWeek: 3, MinutesPerDay: 30},
	}
}

// AttributesFromProfile fills missing profile fields from DefaultAttributes.
func AttributesFromProfile(p *user.Profile, now time.Time) UserAttributes {
	attrs := DefaultAttributes()
	if p == nil {
		return attrs
	}
	if p.Gender != "" {
		attrs.Gender = p.Gender
	}
	if age := p.Age(now); age > 0 {
		attrs.Age = age
	}
	if p.WeightKg > 0 {
		attrs.Weight = p.WeightKg
	}
	if p.HeightCm > 0 {
		attrs.Height = p.HeightCm
	}
	if p.FitnessLevel != "" {
		attrs.FitnessLevel = p.FitnessLevel
	}
	if p.Goal != "" {
		attrs.Goal = p.Goal
	}
	if p.DaysPerWeek > 0 {
		attrs.Availability.DaysPerWeek = p.DaysPerWeek
	}
	if p.MinutesPerDay > 0 {
		attrs.Availability.MinutesPerDay = p.MinutesPerDay
	}
	attrs.DietaryPreferences = p.DietaryPreferences
	attrs.HealthConsiderations = p.HealthConsiderations
	if len(p.Equipment) > 0 {
		attrs.Equipment = p.Equipment
	}
	return attrs
}

// RollingDates returns today (UTC) and the following n-1 days as ISO dates.
func RollingDates(now time.Time, n int) []string {
	start := startOfDay(now)
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, start.AddDate(0, 0, i).Format(DateLayout))
	}
	return dates
}

// dayWindow returns the inclusive UTC bounds of the calendar day containing t.
func dayWindow(t time.Time) (time.Time, time.Time) {
	start := startOfDay(t)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// rollingWindow returns the inclusive UTC bounds of today plus days-1 following days.
func rollingWindow(now time.Time, days int) (time.Time, time.Time) {
	start := startOfDay(now)
	return start, start.AddDate(0, 0, days).Add(-time.Nanosecond)
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
