package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"goalfit/internal/auth"
	"goalfit/internal/database"
	"goalfit/internal/metrics"
	"goalfit/internal/subscription"
	"goalfit/internal/user"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *database.DB) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", resolveDBPath())
			return nil
		})
	},
}

var (
	tokenUserID string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API access token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("user", tokenUserID); err != nil {
			return err
		}
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			return fmt.Errorf("JWT_SECRET environment variable not set")
		}
		token, err := auth.Issue(secret, tokenUserID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts",
}

var (
	userEmail    string
	userName     string
	userInactive bool
)

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("email", userEmail); err != nil {
			return err
		}
		return withDB(func(db *database.DB) error {
			u, err := user.NewRepository(db.SQL).Create(cmd.Context(), user.User{
				Email:    strings.TrimSpace(userEmail),
				Name:     strings.TrimSpace(userName),
				IsActive: !userInactive,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", u.ID)
			return nil
		})
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *database.DB) error {
			users, err := user.NewRepository(db.SQL).List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "ID\tEMAIL\tNAME\tACTIVE")
			for _, u := range users {
				fmt.Fprintf(out, "%s\t%s\t%s\t%t\n", u.ID, u.Email, u.Name, u.IsActive)
			}
			return nil
		})
	},
}

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Manage subscription state",
}

var (
	subUserID    string
	subStatus    string
	subPeriodEnd string
)

var subscriptionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the subscription status of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("user", subUserID); err != nil {
			return err
		}
		status := strings.ToUpper(strings.TrimSpace(subStatus))
		switch status {
		case subscription.StatusActive, subscription.StatusCanceled, subscription.StatusPastDue:
		default:
			return fmt.Errorf("invalid --status %q (expected %s, %s or %s)", subStatus,
				subscription.StatusActive, subscription.StatusCanceled, subscription.StatusPastDue)
		}
		periodEnd, err := parseDateOrNil("period-end", subPeriodEnd)
		if err != nil {
			return err
		}
		return withDB(func(db *database.DB) error {
			if err := subscription.NewRepository(db.SQL).Set(cmd.Context(), subUserID, status, periodEnd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subscription of %s set to %s\n", subUserID, status)
			return nil
		})
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect generation usage",
}

var metricsDays int

var metricsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show daily token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		if metricsDays <= 0 {
			return fmt.Errorf("--days must be > 0")
		}
		return withDB(func(db *database.DB) error {
			usage, err := metrics.NewStore(db.SQL).GetDailyUsage(metricsDays)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "DATE\tCALLS\tPROMPT\tCOMPLETION")
			for _, u := range usage {
				fmt.Fprintf(out, "%s\t%d\t%d\t%d\n", u.Date, u.TotalExecution, u.TotalPrompt, u.TotalCompletion)
			}
			return nil
		})
	},
}

var metricsOlderThan int

var metricsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete usage records older than N days",
	RunE: func(cmd *cobra.Command, args []string) error {
		if metricsOlderThan <= 0 {
			return fmt.Errorf("--older-than must be > 0")
		}
		return withDB(func(db *database.DB) error {
			n, err := metrics.NewStore(db.SQL).Cleanup(metricsOlderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", n)
			return nil
		})
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "User id (token subject)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	usersCreateCmd.Flags().StringVar(&userEmail, "email", "", "E-mail address")
	usersCreateCmd.Flags().StringVar(&userName, "name", "", "Display name")
	usersCreateCmd.Flags().BoolVar(&userInactive, "inactive", false, "Create the account disabled")
	usersCmd.AddCommand(usersCreateCmd, usersListCmd)

	subscriptionSetCmd.Flags().StringVar(&subUserID, "user", "", "User id")
	subscriptionSetCmd.Flags().StringVar(&subStatus, "status", subscription.StatusActive, "ACTIVE, CANCELED or PAST_DUE")
	subscriptionSetCmd.Flags().StringVar(&subPeriodEnd, "period-end", "", "End of the current billing period (YYYY-MM-DD)")
	subscriptionCmd.AddCommand(subscriptionSetCmd)

	metricsUsageCmd.Flags().IntVar(&metricsDays, "days", 7, "Number of days to report")
	metricsCleanupCmd.Flags().IntVar(&metricsOlderThan, "older-than", 30, "Age in days of records to delete")
	metricsCmd.AddCommand(metricsUsageCmd, metricsCleanupCmd)

	rootCmd.AddCommand(migrateCmd, tokenCmd, usersCmd, subscriptionCmd, metricsCmd)
}
