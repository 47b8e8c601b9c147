package cli

import (
	"fmt"
	"io"
	"time"

	"goalfit/internal/app"
	"goalfit/internal/planner"

	"github.com/spf13/cobra"
)

var (
	genUserID string
	genForce  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate custom plans for a user",
}

var generateMealsCmd = &cobra.Command{
	Use:   "meals",
	Short: "Regenerate the rolling window of meal plans for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("user", genUserID); err != nil {
			return err
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			generate := a.Meals.GenerateForUser
			if genForce {
				generate = a.Meals.RefreshUser
			}
			plans, err := generate(cmd.Context(), genUserID)
			if err != nil {
				return err
			}
			printMealPlans(cmd.OutOrStdout(), plans)
			return nil
		})
	},
}

var generateWorkoutsCmd = &cobra.Command{
	Use:   "workouts",
	Short: "Regenerate the rolling window of workout plans for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFlag("user", genUserID); err != nil {
			return err
		}
		return withApp(cmd.Context(), func(a *app.App) error {
			generate := a.Workouts.GenerateForUser
			if genForce {
				generate = a.Workouts.RefreshUser
			}
			plans, err := generate(cmd.Context(), genUserID)
			if err != nil {
				return err
			}
			printWorkoutPlans(cmd.OutOrStdout(), plans)
			return nil
		})
	},
}

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Manage shared default plans",
}

var defaultsEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Generate default plans for the rolling window when none exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			meals, err := a.Meals.EnsureDefaults(cmd.Context())
			if err != nil {
				return fmt.Errorf("meal defaults: %w", err)
			}
			workouts, err := a.Workouts.EnsureDefaults(cmd.Context())
			if err != nil {
				return fmt.Errorf("workout defaults: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "meal defaults stored: %t\nworkout defaults stored: %t\n", meals, workouts)
			return nil
		})
	},
}

var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the plan refresh job",
}

var schedulerRunOnceCmd = &cobra.Command{
	Use:   "run-once",
	Short: "Run a single refresh tick over every user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			report, err := a.Scheduler.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "USER\tPATH\tSTATE")
			for _, o := range report.Outcomes {
				fmt.Fprintf(out, "%s\t%s\t%s\n", o.UserID, o.Path, o.State)
			}
			fmt.Fprintf(out, "%d processed, %d failed in %s\n", report.Processed, report.Failed, report.Duration.Round(time.Millisecond))
			return nil
		})
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Weekly weigh-in reminders",
}

var remindersSendCmd = &cobra.Command{
	Use:   "send",
	Short: "E-mail active users who have not logged a weight this week",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			sent, err := a.Reminder.Send(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %d reminders\n", sent)
			return nil
		})
	},
}

func printMealPlans(w io.Writer, plans []planner.MealPlan) {
	fmt.Fprintln(w, "DATE\tMEALS\tKCAL\tPROTEIN\tCARBS\tFAT")
	for _, p := range plans {
		fmt.Fprintf(w, "%s\t%d\t%.0f\t%.0f\t%.0f\t%.0f\n",
			p.Date.Format(planner.DateLayout), len(p.Meals), p.TotalCalories, p.TotalProtein, p.TotalCarbs, p.TotalFat)
	}
}

func printWorkoutPlans(w io.Writer, plans []planner.WorkoutPlan) {
	fmt.Fprintln(w, "DATE\tEXERCISES\tMINUTES\tKCAL")
	for _, p := range plans {
		exercises := 0
		for _, wo := range p.Workouts {
			exercises += len(wo.Exercises)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\n", p.Date.Format(planner.DateLayout), exercises, p.TotalMinutes, p.TotalCalories)
	}
}

func init() {
	generateCmd.PersistentFlags().StringVar(&genUserID, "user", "", "User id")
	generateCmd.PersistentFlags().BoolVar(&genForce, "force", false, "Skip the subscription check")
	generateCmd.AddCommand(generateMealsCmd, generateWorkoutsCmd)
	defaultsCmd.AddCommand(defaultsEnsureCmd)
	schedulerCmd.AddCommand(schedulerRunOnceCmd)
	remindersCmd.AddCommand(remindersSendCmd)
	rootCmd.AddCommand(generateCmd, defaultsCmd, schedulerCmd, remindersCmd)
}
