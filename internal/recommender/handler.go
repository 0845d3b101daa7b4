package recommender

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/shop-recommender/internal/catalog"
	"github.com/dustin/shop-recommender/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RebuildTrigger enqueues an asynchronous index rebuild
type RebuildTrigger interface {
	TriggerNow()
}

// Handler handles HTTP requests for recommendation operations
type Handler struct {
	service Service
	trigger RebuildTrigger
}

// NewHandler creates a new recommendation handler
func NewHandler(service Service, trigger RebuildTrigger) *Handler {
	return &Handler{
		service: service,
		trigger: trigger,
	}
}

// GetRecommendations handles top-N similar product lookups
func (h *Handler) GetRecommendations(c *gin.Context) {
	start := time.Now()
	metrics.RecommendRequests.Inc()

	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	recommendations, err := h.service.GetRecommendations(c.Request.Context(), productID, limit)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidLimit):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Limit must be a positive integer"})
		case errors.Is(err, catalog.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog service unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendations"})
		}
		return
	}

	metrics.RecommendLatency.Observe(time.Since(start).Seconds())
	c.JSON(http.StatusOK, BuildRecommendationResponse(recommendations, productID))
}

// TriggerRebuild enqueues an index rebuild and returns immediately.
// The rebuild itself runs in the refresh worker, never in-request.
func (h *Handler) TriggerRebuild(c *gin.Context) {
	h.trigger.TriggerNow()

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": uuid.New().String(),
		"status": "accepted",
	})
}

// RegisterRoutes registers all recommendation routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware, adminMiddleware gin.HandlerFunc) {
	products := router.Group("/products")
	products.Use(authMiddleware)
	{
		products.GET("/:id/recommendations", h.GetRecommendations)
	}

	// rebuild trigger is admin-only
	admin := router.Group("/recommendations")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/rebuild", h.TriggerRebuild)
	}
}
