package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"goalfit/internal/metrics"
	"goalfit/internal/planner"
	"goalfit/internal/subscription"

	"github.com/gin-gonic/gin"
)

// writeError maps pipeline errors to status codes. Anything unexpected is
// logged and reported as a bare 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, planner.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case errors.Is(err, planner.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "an active subscription is required", "plan": subscription.ProPlan})
	case errors.Is(err, planner.ErrGenerationUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "plan generation is temporarily unavailable"})
	default:
		log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func healthHandler(dataDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "system": metrics.GetSysHealth(dataDir)})
	}
}

type weightInput struct {
	WeightKg float64 `json:"weightKg" binding:"required,gt=0"`
	Date     string  `json:"date"`
}

func addWeightHandler(weights WeightStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in weightInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		date := time.Now().UTC()
		if in.Date != "" {
			d, err := time.Parse(planner.DateLayout, in.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			date = d
		}

		entry, err := weights.Add(c.Request.Context(), currentUser(c), date, in.WeightKg)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

func subscriptionHandler(subs SubscriptionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := subs.Get(c.Request.Context(), currentUser(c))
		if err != nil {
			writeError(c, err)
			return
		}
		resp := gin.H{"plan": subscription.ProPlan, "status": "NONE", "active": false}
		if s != nil {
			resp["status"] = s.Status
			resp["active"] = s.Status == subscription.StatusActive
			if s.CurrentPeriodEnd != nil {
				resp["currentPeriodEnd"] = s.CurrentPeriodEnd
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
