package planner

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
)

//go:embed meal_prompt.md
var mealPrompt string

//go:embed workout_prompt.md
var workoutPrompt string

var promptFuncs = template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, ", ") },
}

var (
	mealPromptTmpl    = template.Must(template.New("meal").Funcs(promptFuncs).Parse(mealPrompt))
	workoutPromptTmpl = template.Must(template.New("workout").Funcs(promptFuncs).Parse(workoutPrompt))
)

type promptData struct {
	UserAttributes
	Dates []string
}

// BuildMealPrompt renders the meal-plan instruction for the given dates.
func BuildMealPrompt(attrs UserAttributes, dates []string) (string, error) {
	return render(mealPromptTmpl, attrs, dates)
}

// BuildWorkoutPrompt renders the workout-plan instruction for the given dates.
func BuildWorkoutPrompt(attrs UserAttributes, dates []string) (string, error) {
	return render(workoutPromptTmpl, attrs, dates)
}

func render(tmpl *template.Template, attrs UserAttributes, dates []string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{UserAttributes: attrs, Dates: dates}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
