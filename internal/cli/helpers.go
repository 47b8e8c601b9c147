package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"goalfit/internal/app"
	"goalfit/internal/config"
	"goalfit/internal/database"
	"goalfit/internal/planner"
)

func resolveDBPath() string {
	if p := strings.TrimSpace(dbPath); p != "" {
		return p
	}
	if p := os.Getenv("DATABASE_PATH"); p != "" {
		return p
	}
	return config.DefaultDatabasePath
}

// withDB is for commands that only need storage and no provider credentials.
func withDB(run func(*database.DB) error) error {
	db, err := database.NewDB(resolveDBPath())
	if err != nil {
		return err
	}
	defer db.Close()
	return run(db)
}

func withApp(ctx context.Context, run func(*app.App) error) error {
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if p := strings.TrimSpace(dbPath); p != "" {
		cfg.DatabasePath = p
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return run(a)
}

func parseDateOrNil(name, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(planner.DateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q (expected YYYY-MM-DD)", name, value)
	}
	return &t, nil
}

func requireFlag(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
