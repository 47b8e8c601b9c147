package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"goalfit/internal/auth"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	for _, sub := range []string{"generate", "defaults", "scheduler", "reminders", "migrate", "token", "subscription", "metrics"} {
		if !strings.Contains(out, sub) {
			t.Errorf("Expected help to list %q", sub)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalfit.db")
	for i := 0; i < 2; i++ {
		if _, err := run(t, "--db", path, "migrate"); err != nil {
			t.Fatalf("migrate run %d failed: %v", i+1, err)
		}
	}
}

func TestUsersAndSubscription(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalfit.db")

	out, err := run(t, "--db", path, "users", "create", "--email", "alice@example.com", "--name", "Alice")
	if err != nil {
		t.Fatalf("users create failed: %v", err)
	}
	id := strings.TrimSpace(strings.TrimPrefix(out, "Created user "))
	if id == "" {
		t.Fatalf("Expected a user id, got %q", out)
	}

	out, err = run(t, "--db", path, "users", "list")
	if err != nil {
		t.Fatalf("users list failed: %v", err)
	}
	if !strings.Contains(out, "alice@example.com") {
		t.Errorf("Expected Alice in the listing, got %q", out)
	}

	if _, err := run(t, "--db", path, "subscription", "set", "--user", id, "--status", "active", "--period-end", "2030-01-31"); err != nil {
		t.Fatalf("subscription set failed: %v", err)
	}
	if _, err := run(t, "--db", path, "subscription", "set", "--user", id, "--status", "GOLD"); err == nil {
		t.Error("Expected error for unknown status, got nil")
	}
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := run(t, "token", "--user", "u42")
	if err != nil {
		t.Fatalf("token failed: %v", err)
	}
	sub, err := auth.NewVerifier("cli-secret").Parse(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("Expected a valid token, got %v", err)
	}
	if sub != "u42" {
		t.Errorf("Expected subject 'u42', got '%s'", sub)
	}
}

func TestMetricsCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "goalfit.db")
	out, err := run(t, "--db", path, "metrics", "usage", "--days", "3")
	if err != nil {
		t.Fatalf("metrics usage failed: %v", err)
	}
	if !strings.HasPrefix(out, "DATE\tCALLS") {
		t.Errorf("Expected usage header, got %q", out)
	}
	out, err = run(t, "--db", path, "metrics", "cleanup", "--older-than", "1")
	if err != nil {
		t.Fatalf("metrics cleanup failed: %v", err)
	}
	if strings.TrimSpace(out) != "Removed 0 records" {
		t.Errorf("Unexpected output %q", out)
	}
}
