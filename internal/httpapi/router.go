package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"goalfit/internal/planner"
	"goalfit/internal/subscription"
	"goalfit/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const userIDKey = "userID"

// PlanService is the plan pipeline for one domain. *planner.MealService and
// *planner.WorkoutService satisfy it.
type PlanService[P, V any] interface {
	Generate(ctx context.Context, req planner.GenerationRequest) (V, error)
	GenerateForUser(ctx context.Context, userID string) ([]P, error)
	GetPlans(ctx context.Context, userID string) ([]P, error)
	DefaultPlans(ctx context.Context, days int) ([]P, error)
	RegenerateDefaults(ctx context.Context, days int) ([]P, error)
}

// TokenParser resolves a bearer token to a user id. *auth.Verifier satisfies it.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// WeightStore appends weigh-ins. *user.WeightRepository satisfies it.
type WeightStore interface {
	Add(ctx context.Context, userID string, date time.Time, weightKg float64) (user.WeightEntry, error)
}

// SubscriptionStore reads billing state. *subscription.Repository satisfies it.
type SubscriptionStore interface {
	Get(ctx context.Context, userID string) (*subscription.Subscription, error)
}

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Meals          PlanService[planner.MealPlan, planner.ValidatedMealPlan]
	Workouts       PlanService[planner.WorkoutPlan, planner.ValidatedWorkoutPlan]
	Weights        WeightStore
	Subscriptions  SubscriptionStore
	Tokens         TokenParser
	DataDir        string
	AllowedOrigins []string
}

// NewRouter wires every route. Everything under /api requires a bearer token.
func NewRouter(d Deps) *gin.Engine {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthHandler(d.DataDir))

	api := r.Group("/api")
	api.Use(bearerAuth(d.Tokens))
	{
		registerPlanRoutes(api.Group("/meal-plans"), d.Meals)
		registerPlanRoutes(api.Group("/workout-plans"), d.Workouts)

		api.POST("/ai/meal-plan", planHandler[planner.MealPlan, planner.ValidatedMealPlan]{d.Meals}.generate)
		api.POST("/ai/workout-plan", planHandler[planner.WorkoutPlan, planner.ValidatedWorkoutPlan]{d.Workouts}.generate)

		api.POST("/weight", addWeightHandler(d.Weights))
		api.GET("/subscription", subscriptionHandler(d.Subscriptions))
	}
	return r
}

func bearerAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		userID, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
