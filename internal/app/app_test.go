package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"goalfit/internal/auth"
	"goalfit/internal/config"

	"github.com/gin-gonic/gin"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		LLMProvider:            config.ProviderOpenAI,
		LLMAPIKey:              "test-key",
		LLMTimeout:             time.Second,
		DatabasePath:           filepath.Join(t.TempDir(), "data", "goalfit.db"),
		JWTSecret:              "secret",
		AllowedOrigins:         []string{"http://localhost:3000"},
		FrontendURL:            "http://localhost:3000",
		Timezone:               "UTC",
		PlanRefreshSchedule:    "0 0 */2 * *",
		WeightReminderSchedule: "0 8 * * 1",
	}
}

func TestNew(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	a, err := New(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Meals.Domain() != "meal" || a.Workouts.Domain() != "workout" {
		t.Error("Expected both plan services to be wired")
	}
	if a.Alerter.Enabled() {
		t.Error("Expected alerts to be disabled without a bot token")
	}

	token, err := auth.Issue("secret", "u1", time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/subscription", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from the wired router, got %d: %s", w.Code, w.Body.String())
	}

	c, err := a.Cron(ctx)
	if err != nil {
		t.Fatalf("Cron failed: %v", err)
	}
	c.Start()
	c.Stop()
}

func TestNewRejectsBadTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Timezone = "Mars/Olympus"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error for unknown timezone, got nil")
	}
}
