package app

import (
	"context"
	"fmt"
	"log"

	"goalfit/internal/auth"
	"goalfit/internal/config"
	"goalfit/internal/database"
	"goalfit/internal/httpapi"
	"goalfit/internal/llm"
	"goalfit/internal/metrics"
	"goalfit/internal/notify"
	"goalfit/internal/planner"
	"goalfit/internal/scheduler"
	"goalfit/internal/subscription"
	"goalfit/internal/user"

	"github.com/gin-gonic/gin"
)

// App holds the application's dependencies.
type App struct {
	Config        *config.Config
	DB            *database.DB
	Users         *user.Repository
	Weights       *user.WeightRepository
	Subscriptions *subscription.Repository
	Metrics       *metrics.Store
	Meals         *planner.MealService
	Workouts      *planner.WorkoutService
	Scheduler     *scheduler.Scheduler
	Reminder      *scheduler.WeightReminder
	Alerter       *notify.TelegramAlerter

	generator llm.TextGenerator
}

// New opens the database, builds the generation client for the configured
// provider and wires the services on top of them.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gen, err := llm.NewGenerator(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create %s generator: %w", cfg.LLMProvider, err)
	}

	alerter, err := notify.NewTelegramAlerter(cfg.TelegramBotToken, cfg.TelegramAdminChatID)
	if err != nil {
		log.Printf("Warning: admin alerts disabled: %v", err)
		alerter = &notify.TelegramAlerter{}
	}

	loc, err := cfg.Location()
	if err != nil {
		db.Close()
		return nil, err
	}

	fallback, err := planner.LoadFallback(planner.DefaultLocale)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &App{
		Config:        cfg,
		DB:            db,
		Users:         user.NewRepository(db.SQL),
		Weights:       user.NewWeightRepository(db.SQL),
		Subscriptions: subscription.NewRepository(db.SQL),
		Metrics:       metrics.NewStore(db.SQL),
		Alerter:       alerter,
		generator:     gen,
	}

	deps := planner.Deps{
		Generator: llm.NewClient(gen, cfg.LLMTimeout, a.Metrics),
		Gate:      a.Subscriptions,
		Profiles:  a.Users,
		Fallback:  fallback,
	}
	a.Meals = planner.NewMealService(deps, planner.NewMealRepository(db.SQL))
	a.Workouts = planner.NewWorkoutService(deps, planner.NewWorkoutRepository(db.SQL))

	a.Scheduler = scheduler.New(a.Users, a.Subscriptions, a.Alerter, a.Meals, a.Workouts)
	mailer := notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	a.Reminder = scheduler.NewWeightReminder(a.Users, a.Weights, mailer, cfg.FrontendURL, loc)

	return a, nil
}

// Router builds the HTTP surface.
func (a *App) Router() *gin.Engine {
	return httpapi.NewRouter(httpapi.Deps{
		Meals:          a.Meals,
		Workouts:       a.Workouts,
		Weights:        a.Weights,
		Subscriptions:  a.Subscriptions,
		Tokens:         auth.NewVerifier(a.Config.JWTSecret),
		DataDir:        a.Config.DataDir(),
		AllowedOrigins: a.Config.AllowedOrigins,
	})
}

// Cron schedules the plan refresh and the weight reminder in the configured timezone.
func (a *App) Cron(ctx context.Context) (*scheduler.Cron, error) {
	loc, err := a.Config.Location()
	if err != nil {
		return nil, err
	}
	return scheduler.NewCron(ctx, loc, a.Config.PlanRefreshSchedule, a.Config.WeightReminderSchedule, a.Scheduler, a.Reminder)
}

// Close releases the generator and the database.
func (a *App) Close() error {
	if c, ok := a.generator.(llm.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("Warning: failed to close generator: %v", err)
		}
	}
	return a.DB.Close()
}
