package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// StripCodeFences removes Markdown fence delimiters (and a language tag)
// surrounding a payload.
func StripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimLeftFunc(strings.TrimPrefix(text, "```"), unicode.IsLetter)
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// parseAndValidate wraps the fence-stripped text as {"days": <text>}, checks it
// against schema and only then decodes it into out. Nothing is decoded when
// any part of the payload is invalid.
func parseAndValidate(raw string, schema Schema, out any) error {
	envelope := []byte(`{"days":` + StripCodeFences(raw) + `}`)

	var doc any
	if err := json.Unmarshal(envelope, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := Validate(doc, schema); err != nil {
		return err
	}
	if err := json.Unmarshal(envelope, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// checkDays requires the response to hold exactly one day per requested date.
// Dates outside the request or repeated are rejected like any other schema
// violation, so they never reach the store.
func checkDays(got, requested []string) error {
	want := make(map[string]bool, len(requested))
	for _, d := range requested {
		want[d] = true
	}
	seen := make(map[string]bool, len(got))
	for i, d := range got {
		path := fmt.Sprintf("$.days[%d].date", i)
		if !want[d] {
			return &SchemaViolation{Path: path, Expected: "a requested date", Got: fmt.Sprintf("%q", d)}
		}
		if seen[d] {
			return &SchemaViolation{Path: path, Expected: "a date not already returned", Got: fmt.Sprintf("%q", d)}
		}
		seen[d] = true
	}
	if len(seen) != len(want) {
		return &SchemaViolation{
			Path:     "$.days",
			Expected: fmt.Sprintf("%d days", len(want)),
			Got:      fmt.Sprintf("%d days", len(seen)),
		}
	}
	return nil
}
