package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"goalfit/internal/planner"

	"github.com/gin-gonic/gin"
)

const (
	defaultDays = planner.RollingWindowDays
	maxDays     = 14
)

type planHandler[P, V any] struct {
	svc PlanService[P, V]
}

func registerPlanRoutes[P, V any](g *gin.RouterGroup, svc PlanService[P, V]) {
	h := planHandler[P, V]{svc: svc}
	g.GET("", h.list)
	g.POST("/generate", h.generateForUser)
	g.GET("/default", h.defaults)
	g.POST("/default/generate", h.regenerateDefaults)
}

func (h planHandler[P, V]) list(c *gin.Context) {
	plans, err := h.svc.GetPlans(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h planHandler[P, V]) generateForUser(c *gin.Context) {
	plans, err := h.svc.GenerateForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h planHandler[P, V]) defaults(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plans, err := h.svc.DefaultPlans(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (h planHandler[P, V]) regenerateDefaults(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plans, err := h.svc.RegenerateDefaults(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// generate is the stateless endpoint: attributes and dates in, validated plan out.
func (h planHandler[P, V]) generate(c *gin.Context) {
	var req planner.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func parseDays(c *gin.Context) (int, error) {
	raw := c.Query("days")
	if raw == "" {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxDays {
		return 0, fmt.Errorf("days must be an integer between 1 and %d", maxDays)
	}
	return days, nil
}
