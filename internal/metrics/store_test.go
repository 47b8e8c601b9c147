package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"goalfit/internal/database"
	"goalfit/internal/llm"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	t.Run("RecordMetaAndDailyUsage", func(t *testing.T) {
		s := setupStore(t)
		meta := llm.Meta{
			AgentName: "MealPlanner",
			Usage:     llm.TokenUsage{PromptTokens: 100, CompletionTokens: 50, Model: "gpt-4o"},
			Latency:   1500 * time.Millisecond,
		}
		if err := s.RecordMeta(meta); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}
		if err := s.RecordMeta(meta); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}
		if err := s.RecordMeta(llm.Meta{AgentName: "WorkoutPlanner"}); err != nil {
			t.Fatalf("RecordMeta failed: %v", err)
		}

		usage, err := s.GetDailyUsage(1)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d", len(usage))
		}
		u := usage[0]
		if u.Date != time.Now().UTC().Format("2006-01-02") {
			t.Errorf("Expected today's date, got %s", u.Date)
		}
		if u.TotalPrompt != 200 || u.TotalCompletion != 100 {
			t.Errorf("Expected 200/100 tokens, got %d/%d", u.TotalPrompt, u.TotalCompletion)
		}
		if u.TotalExecution != 2 {
			t.Errorf("Expected zero-token calls to be skipped, got %d executions", u.TotalExecution)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		s := setupStore(t)
		old := ExecutionMetric{AgentName: "MealPlanner", Model: "m", PromptTokens: 1, Timestamp: time.Now().AddDate(0, 0, -10)}
		recent := ExecutionMetric{AgentName: "MealPlanner", Model: "m", PromptTokens: 1}
		for _, m := range []ExecutionMetric{old, recent} {
			if err := s.Record(m); err != nil {
				t.Fatalf("Record failed: %v", err)
			}
		}

		n, err := s.Cleanup(5)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 row removed, got %d", n)
		}
		usage, _ := s.GetDailyUsage(30)
		if len(usage) != 1 || usage[0].TotalExecution != 1 {
			t.Errorf("Expected only the recent metric to remain, got %+v", usage)
		}
	})
}

func TestMapUsage(t *testing.T) {
	m := MapUsage("MealPlanner", llm.TokenUsage{PromptTokens: 7, CompletionTokens: 3, Model: "gemini-1.5-flash"}, 250*time.Millisecond)
	if m.LatencyMS != 250 || m.Model != "gemini-1.5-flash" || m.PromptTokens != 7 {
		t.Errorf("Unexpected metric: %+v", m)
	}
	if m.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}

	h := GetSysHealth(dir)
	if h.DataDiskSize != "2.0 KB" {
		t.Errorf("Expected '2.0 KB', got '%s'", h.DataDiskSize)
	}
	if h.Goroutines == 0 {
		t.Error("Expected at least one goroutine")
	}
	if got := formatBytes(512); got != "512 B" {
		t.Errorf("Expected '512 B', got '%s'", got)
	}
}
